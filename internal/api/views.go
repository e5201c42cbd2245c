package api

import (
	"campus-laundry-backend/internal/laundry"
	"campus-laundry-backend/internal/model"
)

// adminOrder is an order row with the status changes the admin may apply.
type adminOrder struct {
	model.Order
	Actions []laundry.OrderStatus `json:"actions"`
}

// stockRow is a stock entry with its computed badge and fill bar.
type stockRow struct {
	model.Stock
	Level      laundry.StockLevel `json:"level"`
	Percentage float64            `json:"percentage"`
}

type dashboardCard struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

var studentCards = []dashboardCard{
	{Title: "Place New Order", Description: "Submit your laundry for washing", Link: "/student/orders?new=true"},
	{Title: "My Orders", Description: "Track the status of your laundry", Link: "/student/orders"},
	{Title: "Complaints", Description: "Report an issue with an order", Link: "/student/complaints"},
}

func toAdminOrders(orders []model.Order) []adminOrder {
	rows := make([]adminOrder, len(orders))
	for i, o := range orders {
		actions := []laundry.OrderStatus{}
		if next, ok := o.Status.Next(); ok {
			actions = append(actions, next)
		}
		rows[i] = adminOrder{Order: o, Actions: actions}
	}
	return rows
}

func toStockRow(item model.Stock) stockRow {
	return stockRow{
		Stock:      item,
		Level:      laundry.Classify(item.CurrentStock, item.MinThreshold),
		Percentage: laundry.Percentage(item.CurrentStock, item.MinThreshold),
	}
}

func toStockRows(items []model.Stock) []stockRow {
	rows := make([]stockRow, len(items))
	for i, item := range items {
		rows[i] = toStockRow(item)
	}
	return rows
}

func orderCounts(orders []model.Order) map[laundry.OrderStatus]int {
	counts := make(map[laundry.OrderStatus]int, len(laundry.OrderStatuses))
	for _, s := range laundry.OrderStatuses {
		counts[s] = 0
	}
	for _, o := range orders {
		counts[o.Status]++
	}
	return counts
}

func complaintCounts(complaints []model.Complaint) map[laundry.ComplaintStatus]int {
	counts := map[laundry.ComplaintStatus]int{
		laundry.ComplaintPending:  0,
		laundry.ComplaintResolved: 0,
	}
	for _, c := range complaints {
		counts[c.Status]++
	}
	return counts
}

func averagePercentage(items []model.Stock) float64 {
	if len(items) == 0 {
		return 0
	}
	var sum float64
	for _, item := range items {
		sum += laundry.Percentage(item.CurrentStock, item.MinThreshold)
	}
	return sum / float64(len(items))
}

// recentOrders returns up to n orders, newest first.
func recentOrders(orders []model.Order, n int) []model.Order {
	recent := make([]model.Order, 0, n)
	for i := len(orders) - 1; i >= 0 && len(recent) < n; i-- {
		recent = append(recent, orders[i])
	}
	return recent
}

// pendingComplaints keeps list order and returns at most n.
func pendingComplaints(complaints []model.Complaint, n int) []model.Complaint {
	pending := make([]model.Complaint, 0, n)
	for _, c := range complaints {
		if len(pending) == n {
			break
		}
		if c.Status == laundry.ComplaintPending {
			pending = append(pending, c)
		}
	}
	return pending
}
