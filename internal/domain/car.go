// Package domain contains the core data types for the car rental API.
// This package has zero external dependencies and is imported by every other
// internal package (repo, service, handler).
package domain

// CarStatus is the availability state of a car. It is the single source of
// truth for whether a car may be newly booked.
type CarStatus string

const (
	CarAvailable   CarStatus = "available"
	CarRented      CarStatus = "rented"
	CarMaintenance CarStatus = "maintenance"
)

// CarStatuses lists every valid CarStatus in display order.
var CarStatuses = []CarStatus{CarAvailable, CarRented, CarMaintenance}

// Valid reports whether s is one of the declared car statuses.
func (s CarStatus) Valid() bool {
	for _, v := range CarStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// CarType is the body style of a car.
type CarType string

const (
	CarSedan     CarType = "sedan"
	CarSUV       CarType = "suv"
	CarSports    CarType = "sports"
	CarHatchback CarType = "hatchback"
	CarPickup    CarType = "pickup"
)

// Transmission is the gearbox kind of a car.
type Transmission string

const (
	TransmissionAutomatic Transmission = "automatic"
	TransmissionManual    Transmission = "manual"
)

// Fuel is the energy source of a car.
type Fuel string

const (
	FuelGasoline Fuel = "gasoline"
	FuelDiesel   Fuel = "diesel"
	FuelElectric Fuel = "electric"
	FuelHybrid   Fuel = "hybrid"
)

// Car is a rentable vehicle.
// Description and Features are optional; nil means "not provided".
// Features is a comma-separated list, e.g. "GPS, Bluetooth".
type Car struct {
	ID           string       `json:"id"`
	Brand        string       `json:"brand"`
	Model        string       `json:"model"`
	Year         int          `json:"year"`
	Type         CarType      `json:"type"`
	Transmission Transmission `json:"transmission"`
	Fuel         Fuel         `json:"fuel"`
	Seats        int          `json:"seats"`
	PricePerDay  int64        `json:"pricePerDay"`
	Image        string       `json:"image"`
	Description  *string      `json:"description"`
	Status       CarStatus    `json:"status"`
	Features     *string      `json:"features"`
}

// CarInput is the full set of fields required to create a car.
// Validation tags are evaluated by the service layer.
type CarInput struct {
	Brand        string       `json:"brand" validate:"required,notblank"`
	Model        string       `json:"model" validate:"required,notblank"`
	Year         int          `json:"year" validate:"required,caryear"`
	Type         CarType      `json:"type" validate:"required,oneof=sedan suv sports hatchback pickup"`
	Transmission Transmission `json:"transmission" validate:"required,oneof=automatic manual"`
	Fuel         Fuel         `json:"fuel" validate:"required,oneof=gasoline diesel electric hybrid"`
	Seats        int          `json:"seats" validate:"required,min=2,max=16"`
	PricePerDay  int64        `json:"pricePerDay" validate:"required"`
	Image        string       `json:"image" validate:"required,imageref"`
	Description  *string      `json:"description"`
	Status       CarStatus    `json:"status" validate:"omitempty,oneof=available rented maintenance"`
	Features     *string      `json:"features"`
}

// CarPatch carries the subset of car fields supplied in a partial update.
// Nil fields leave the stored value unchanged.
type CarPatch struct {
	Brand        *string       `json:"brand" validate:"omitempty,notblank"`
	Model        *string       `json:"model" validate:"omitempty,notblank"`
	Year         *int          `json:"year" validate:"omitempty,caryear"`
	Type         *CarType      `json:"type" validate:"omitempty,oneof=sedan suv sports hatchback pickup"`
	Transmission *Transmission `json:"transmission" validate:"omitempty,oneof=automatic manual"`
	Fuel         *Fuel         `json:"fuel" validate:"omitempty,oneof=gasoline diesel electric hybrid"`
	Seats        *int          `json:"seats" validate:"omitempty,min=2,max=16"`
	PricePerDay  *int64        `json:"pricePerDay"`
	Image        *string       `json:"image" validate:"omitempty,imageref"`
	Description  *string       `json:"description"`
	Status       *CarStatus    `json:"status" validate:"omitempty,oneof=available rented maintenance"`
	Features     *string       `json:"features"`
}

// NewCar builds a Car from validated input, defaulting Status to available.
func NewCar(id string, in CarInput) Car {
	status := in.Status
	if status == "" {
		status = CarAvailable
	}
	return Car{
		ID:           id,
		Brand:        in.Brand,
		Model:        in.Model,
		Year:         in.Year,
		Type:         in.Type,
		Transmission: in.Transmission,
		Fuel:         in.Fuel,
		Seats:        in.Seats,
		PricePerDay:  in.PricePerDay,
		Image:        in.Image,
		Description:  in.Description,
		Status:       status,
		Features:     in.Features,
	}
}

// Apply shallow-merges the non-nil fields of p over c and returns the result.
func (p CarPatch) Apply(c Car) Car {
	if p.Brand != nil {
		c.Brand = *p.Brand
	}
	if p.Model != nil {
		c.Model = *p.Model
	}
	if p.Year != nil {
		c.Year = *p.Year
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Transmission != nil {
		c.Transmission = *p.Transmission
	}
	if p.Fuel != nil {
		c.Fuel = *p.Fuel
	}
	if p.Seats != nil {
		c.Seats = *p.Seats
	}
	if p.PricePerDay != nil {
		c.PricePerDay = *p.PricePerDay
	}
	if p.Image != nil {
		c.Image = *p.Image
	}
	if p.Description != nil {
		c.Description = p.Description
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.Features != nil {
		c.Features = p.Features
	}
	return c
}
