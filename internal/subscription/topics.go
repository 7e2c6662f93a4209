package subscription

// Topic names. Services notify these after writes; handlers subscribe to them.
const (
	TopicUsers           = "users"
	TopicAllAppointments = "appointments:all"
)

func ReadingsTopic(userID string) string {
	return "readings:" + userID
}

func PatientAppointmentsTopic(patientID string) string {
	return "appointments:patient:" + patientID
}

func DoctorAppointmentsTopic(doctorName string) string {
	return "appointments:doctor:" + doctorName
}

// AppointmentTopics lists every topic an appointment change affects.
func AppointmentTopics(patientID, doctorName string) []string {
	return []string{
		PatientAppointmentsTopic(patientID),
		DoctorAppointmentsTopic(doctorName),
		TopicAllAppointments,
	}
}
