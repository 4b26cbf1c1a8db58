package domain

import "time"

type CabinClass string

const (
	CabinEconomy  CabinClass = "economy"
	CabinBusiness CabinClass = "business"
)

// FlightCriteria is a round-trip flight search.
type FlightCriteria struct {
	Origin        string
	Destination   string
	DepartureDate Date
	ReturnDate    Date
	Passengers    int
	CabinClass    CabinClass
}

// HotelCriteria is a hotel search for one stay.
type HotelCriteria struct {
	Destination    string
	BudgetPerNight Money
	Interests      []string
	CheckIn        Date
	CheckOut       Date
}

// FlightOffer is a priced flight returned by a FlightSource. Offers are never mutated.
type FlightOffer struct {
	ID            string     `json:"flight_id"`
	Airline       string     `json:"airline"`
	FlightNumber  string     `json:"flight_number"`
	Origin        string     `json:"origin"`
	Destination   string     `json:"destination"`
	DepartureTime string     `json:"departure_time"`
	ArrivalTime   string     `json:"arrival_time"`
	Duration      string     `json:"duration"`
	Stops         int        `json:"stops"`
	Price         Money      `json:"price"`
	Currency      string     `json:"currency"`
	CabinClass    CabinClass `json:"cabin_class"`
}

// HotelOffer is a priced hotel returned by a HotelSource. Offers are never mutated.
type HotelOffer struct {
	ID                 string   `json:"hotel_id"`
	Name               string   `json:"name"`
	Category           string   `json:"category"`
	Rating             float64  `json:"rating"`
	PricePerNight      Money    `json:"price_per_night"`
	Currency           string   `json:"currency"`
	Location           string   `json:"location"`
	Amenities          []string `json:"amenities,omitempty"`
	AvailableRooms     int      `json:"available_rooms"`
	DistanceFromCenter string   `json:"distance_from_center,omitempty"`
	CheckIn            string   `json:"check_in,omitempty"`
	CheckOut           string   `json:"check_out,omitempty"`
	CancellationPolicy string   `json:"cancellation_policy,omitempty"`
}

// PassengerDetails identifies the traveller a booking is made for.
type PassengerDetails struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

func (p PassengerDetails) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}

// HotelBookingDetails is what a hotel needs to reserve a stay.
type HotelBookingDetails struct {
	Passenger   PassengerDetails
	CheckIn     Date
	CheckOut    Date
	TotalAmount Money
}

// Confirmation is a provider's answer to a successful booking call.
type Confirmation struct {
	BookingID        string    `json:"booking_id"`
	ConfirmationCode string    `json:"confirmation_code"`
	Status           string    `json:"status"`
	Message          string    `json:"message"`
	OfferID          string    `json:"offer_id"`
	GuestName        string    `json:"guest_name,omitempty"`
	CheckIn          Date      `json:"check_in,omitzero"`
	CheckOut         Date      `json:"check_out,omitzero"`
	TotalAmount      Money     `json:"total_amount,omitempty"`
	BookedAt         time.Time `json:"booked_at"`
}
