package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event represents an events row.
type Event struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Sport       string     `json:"sport"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RegistrationSettings is the one-to-one per-event registration configuration,
// upserted by admins.
type RegistrationSettings struct {
	EventID            uuid.UUID       `json:"event_id"`
	TeamRequirements   json.RawMessage `json:"team_requirements"`
	PlayerRequirements json.RawMessage `json:"player_requirements"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TeamRequirements is the parsed slice of team_requirements the lifecycle
// cares about. Custom field definitions ride along untouched.
type TeamRequirements struct {
	RegistrationStartDate *time.Time `json:"registrationStartDate"`
	RegistrationEndDate   *time.Time `json:"registrationEndDate"`
	ReviewEndDate         *time.Time `json:"reviewEndDate"`
}

// ParseTeamRequirements extracts the window instants from a raw
// team_requirements value. Legacy rows store the object JSON-encoded as a
// string; both encodings are accepted. Anything unparseable degrades to
// "no fields present", never an error.
func ParseTeamRequirements(raw json.RawMessage) TeamRequirements {
	var reqs TeamRequirements
	if len(raw) == 0 {
		return reqs
	}

	data := []byte(raw)
	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		data = []byte(encoded)
	}

	if err := json.Unmarshal(data, &reqs); err != nil {
		return TeamRequirements{}
	}
	return reqs
}

// Window returns the registration window described by these requirements.
func (t TeamRequirements) Window() RegistrationWindow {
	return RegistrationWindow{
		Start:     t.RegistrationStartDate,
		End:       t.RegistrationEndDate,
		ReviewEnd: t.ReviewEndDate,
	}
}
