package domain

// DateLayout is the calendar date format used by trips and schedule days.
const DateLayout = "2006-01-02"

// Trip holds the parameters a schedule is generated from.
// StartDate is optional; when empty the schedule starts tomorrow.
type Trip struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	NumDays       int      `json:"num_days"`
	StartLocation PlaceRef `json:"start_location"`
	DayStart      Clock    `json:"preferred_start_time"`
	DayEnd        Clock    `json:"preferred_end_time"`
	StartDate     string   `json:"start_date,omitempty"`
}
