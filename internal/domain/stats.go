package domain

// Stats is the back-office dashboard summary.
// TotalRevenue sums TotalPrice over returned bookings only.
type Stats struct {
	TotalCars       int
	AvailableCars   int
	RentedCars      int
	MaintenanceCars int
	PendingBookings int
	ActiveRentals   int
	TotalRevenue    int64
	RecentBookings  []BookingWithCar
}
