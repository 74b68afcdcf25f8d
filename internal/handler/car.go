package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/car-rental/internal/domain"
	"github.com/pkordes/car-rental/internal/i18n"
)

// listCars handles GET /api/cars.
func (s *Server) listCars(w http.ResponseWriter, r *http.Request) {
	cars, err := s.cars.List(r.Context())
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	if cars == nil {
		cars = []domain.Car{}
	}
	writeJSON(w, http.StatusOK, cars)
}

// getCar handles GET /api/cars/{id}.
func (s *Server) getCar(w http.ResponseWriter, r *http.Request) {
	car, err := s.cars.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err, i18n.MsgCarNotFound)
		return
	}
	writeJSON(w, http.StatusOK, car)
}

// createCar handles POST /api/cars.
func (s *Server) createCar(w http.ResponseWriter, r *http.Request) {
	var in domain.CarInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err, "")
		return
	}

	created, err := s.cars.Create(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err, "")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// updateCar handles PATCH /api/cars/{id}.
func (s *Server) updateCar(w http.ResponseWriter, r *http.Request) {
	var patch domain.CarPatch
	if err := decodeJSON(r, &patch); err != nil {
		s.writeError(w, r, err, "")
		return
	}

	updated, err := s.cars.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err, i18n.MsgCarNotFound)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// deleteCar handles DELETE /api/cars/{id}.
func (s *Server) deleteCar(w http.ResponseWriter, r *http.Request) {
	ok, err := s.cars.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err, i18n.MsgCarNotFound)
		return
	}
	if !ok {
		s.writeError(w, r, domain.ErrNotFound, i18n.MsgCarNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
