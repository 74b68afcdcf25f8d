package handler

import "net/http"

// Stats is the body of GET /api/stats.
type Stats struct {
	TotalCars       int              `json:"totalCars"`
	AvailableCars   int              `json:"availableCars"`
	RentedCars      int              `json:"rentedCars"`
	MaintenanceCars int              `json:"maintenanceCars"`
	PendingBookings int              `json:"pendingBookings"`
	ActiveRentals   int              `json:"activeRentals"`
	TotalRevenue    int64            `json:"totalRevenue"`
	RecentBookings  []BookingWithCar `json:"recentBookings"`
}

// getStats handles GET /api/stats.
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.stats.Summary(r.Context())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusOK, Stats{
		TotalCars:       st.TotalCars,
		AvailableCars:   st.AvailableCars,
		RentedCars:      st.RentedCars,
		MaintenanceCars: st.MaintenanceCars,
		PendingBookings: st.PendingBookings,
		ActiveRentals:   st.ActiveRentals,
		TotalRevenue:    st.TotalRevenue,
		RecentBookings:  bookingsWithCarToResponse(st.RecentBookings),
	})
}
