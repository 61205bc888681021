package models

// Passenger links a user to a ride with a status. A user rides at most once per ride.
type Passenger struct {
	UserID   int64 `json:"user_id"`
	RideID   int64 `json:"ride_id"`
	StatusID int64 `json:"status_id"`
}

// PassengerPatch is the JSON body for the /rides/{ride_id}/users endpoints.
// The ride comes from the path; on PUT the user does too.
type PassengerPatch struct {
	UserID   *int64 `json:"user_id"`
	StatusID *int64 `json:"status_id" validate:"required"`
}
