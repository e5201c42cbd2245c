// Package seed holds the sample records every new session starts with.
package seed

import (
	"campus-laundry-backend/internal/laundry"
	"campus-laundry-backend/internal/model"
)

// Dataset is the full set of records a session starts with. SessionID fields
// are left empty; the store stamps them on insert.
type Dataset struct {
	Orders     []model.Order
	Complaints []model.Complaint
	Stock      []model.Stock
}

// For returns the dataset shown to role. Student records are attributed to
// username.
func For(role laundry.Role, username string) Dataset {
	if role == laundry.RoleAdmin {
		return Dataset{
			Orders:     adminOrders(),
			Complaints: adminComplaints(),
			Stock:      stock(),
		}
	}
	return Dataset{
		Orders:     studentOrders(username),
		Complaints: studentComplaints(username),
	}
}

func adminOrders() []model.Order {
	return []model.Order{
		order(1, "ST001", laundry.WashPremium, "Hypoallergenic", 5, "2025-01-10", "2025-01-12", laundry.OrderDelivered),
		order(2, "ST002", laundry.WashNormal, "Standard", 8, "2025-01-14", "2025-01-16", laundry.OrderPending),
		order(3, "ST003", laundry.WashDryClean, "Standard", 3, "2025-01-13", "2025-01-15", laundry.OrderCollected),
		order(4, "ST001", laundry.WashNormal, "Hypoallergenic", 6, "2025-01-15", "2025-01-17", laundry.OrderPending),
	}
}

func studentOrders(username string) []model.Order {
	return []model.Order{
		order(1, username, laundry.WashPremium, "Hypoallergenic", 5, "2025-01-10", "2025-01-12", laundry.OrderCollected),
		order(2, username, laundry.WashNormal, "Standard", 8, "2025-01-14", "2025-01-16", laundry.OrderPending),
	}
}

func adminComplaints() []model.Complaint {
	return []model.Complaint{
		complaint(1, "ST001", "Delayed delivery",
			"My order was supposed to be delivered yesterday but hasn't arrived yet. I need my clothes for an important meeting tomorrow.",
			"2025-01-13", laundry.ComplaintPending),
		complaint(2, "ST002", "Stain not removed",
			"There was a coffee stain on my white shirt that wasn't properly cleaned. The stain is still visible after washing.",
			"2025-01-10", laundry.ComplaintResolved),
		complaint(3, "ST003", "Wrong detergent used",
			"I specifically requested hypoallergenic detergent but standard detergent was used, causing skin irritation.",
			"2025-01-14", laundry.ComplaintPending),
	}
}

func studentComplaints(username string) []model.Complaint {
	return []model.Complaint{
		complaint(1, username, "Delayed delivery",
			"My order was supposed to be delivered yesterday but hasn't arrived yet.",
			"2025-01-13", laundry.ComplaintPending),
		complaint(2, username, "Stain not removed",
			"There was a stain on my shirt that wasn't properly cleaned.",
			"2025-01-10", laundry.ComplaintResolved),
	}
}

func stock() []model.Stock {
	return []model.Stock{
		{ID: "1", Seq: 1, DetergentType: "Standard", CurrentStock: 150, MinThreshold: 50, Unit: "kg"},
		{ID: "2", Seq: 2, DetergentType: "Hypoallergenic", CurrentStock: 85, MinThreshold: 30, Unit: "kg"},
		{ID: "3", Seq: 3, DetergentType: "Fabric Softener", CurrentStock: 45, MinThreshold: 20, Unit: "L"},
		{ID: "4", Seq: 4, DetergentType: "Stain Remover", CurrentStock: 25, MinThreshold: 15, Unit: "L"},
	}
}

func order(seq int, student, wash, detergent string, count int, given, returned string, status laundry.OrderStatus) model.Order {
	return model.Order{
		ID:            laundry.FormatOrderID(seq),
		Seq:           seq,
		StudentID:     student,
		WashType:      wash,
		DetergentType: detergent,
		ClothCount:    count,
		GivenDate:     given,
		ReturnDate:    returned,
		Status:        status,
	}
}

func complaint(seq int, student, subject, description, date string, status laundry.ComplaintStatus) model.Complaint {
	return model.Complaint{
		ID:          laundry.FormatComplaintID(seq),
		Seq:         seq,
		StudentID:   student,
		Subject:     subject,
		Description: description,
		Date:        date,
		Status:      status,
	}
}
