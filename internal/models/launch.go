package models

// Rocket describes the vehicle assigned to a launch.
type Rocket struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Mission carries the mission name and the two patch-image variants the
// catalog publishes for it.
type Mission struct {
	Name              string `json:"name"`
	MissionPatchSmall string `json:"missionPatchSmall"`
	MissionPatchLarge string `json:"missionPatchLarge"`
}

// Launch is a single catalog entry. The catalog owns these records; this
// service only reads them. Cursor is the pagination position marker assigned
// when the record is mapped from the catalog response.
type Launch struct {
	ID      string  `json:"id"`
	Cursor  string  `json:"cursor"`
	Site    string  `json:"site"`
	Mission Mission `json:"mission"`
	Rocket  Rocket  `json:"rocket"`
}

// User is a booking-store identity, created lazily on first reference by
// email. Booked launch ids are kept in the trips relation, not on the struct.
type User struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

// LaunchConnection is one page of launches plus the state needed to request
// the next page.
type LaunchConnection struct {
	Cursor   string   `json:"cursor"`
	HasMore  bool     `json:"hasMore"`
	Launches []Launch `json:"launches"`
}

// TripUpdateResponse reports the outcome of a booking or cancellation,
// including partial success across a batch.
type TripUpdateResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Launches []Launch `json:"launches"`
}
