package store

import "arogya-app-server/internal/models"

// Doctors is the static doctor directory.
func Doctors() []models.Doctor {
	return []models.Doctor{
		{
			ID: "d1", Name: "Dr. Anjali Gupta", Specialty: "Cardiologist", Hospital: "Apollo Heart Center",
			Rating: 4.9, Experience: 12, Fee: 1500, Location: "New Delhi",
			Image:          "https://images.unsplash.com/photo-1559839734-2b71ea86065e?q=80&w=200&auto=format&fit=crop",
			AvailableSlots: []string{"10:00 AM", "11:30 AM", "02:00 PM", "04:30 PM"},
		},
		{
			ID: "d2", Name: "Dr. Rajesh Koothrappali", Specialty: "Neurologist", Hospital: "Max Super Specialty",
			Rating: 4.7, Experience: 8, Fee: 2000, Location: "Mumbai",
			Image:          "https://images.unsplash.com/photo-1612349317150-e413f6a5b16d?q=80&w=200&auto=format&fit=crop",
			AvailableSlots: []string{"09:00 AM", "01:00 PM", "03:00 PM"},
		},
		{
			ID: "d3", Name: "Dr. Sarah Connors", Specialty: "General Physician", Hospital: "City Care Clinic",
			Rating: 4.8, Experience: 15, Fee: 800, Location: "Bangalore",
			Image:          "https://images.unsplash.com/photo-1594824476967-48c8b964273f?q=80&w=200&auto=format&fit=crop",
			AvailableSlots: []string{"10:00 AM", "10:30 AM", "11:00 AM", "05:00 PM"},
		},
		{
			ID: "d4", Name: "Dr. Strange", Specialty: "Surgeon", Hospital: "Metro Hospital",
			Rating: 5.0, Experience: 20, Fee: 5000, Location: "New York (Remote)",
			Image:          "https://images.unsplash.com/photo-1622253692010-333f2da6031d?q=80&w=200&auto=format&fit=crop",
			AvailableSlots: []string{"08:00 PM", "09:00 PM"},
		},
	}
}

func defaultReminders() []models.Reminder {
	return []models.Reminder{
		{ID: "1", Title: "Vitamin D", Time: "09:00", Dosage: "1 Tablet", Type: models.FormPill, Taken: false},
		{ID: "2", Title: "Amoxicillin", Time: "14:00", Dosage: "500mg", Type: models.FormPill, Taken: false},
	}
}

func defaultReports() []models.MedicalReport {
	return []models.MedicalReport{
		{
			ID: "r1", Title: "Blood Chemistry", Date: "2024-10-12", Hospital: "Apollo Hospital", Type: "PDF",
			Content: "Patient shows elevated cholesterol levels (240 mg/dL). Glucose levels are normal (95 mg/dL). " +
				"Vitamin D deficiency detected (15 ng/mL). Recommended lifestyle changes and supplements.",
		},
	}
}
