package openf1

import "time"

// Record types for the OpenF1 endpoints. Every endpoint returns a JSON
// array of flat records; fields the API reports as null are pointers.
//
// Fields the API types inconsistently (a gap can be a number of seconds or
// the string "+1 LAP") are declared as any and interpreted by the caller.

// Meeting is one Grand Prix weekend.
type Meeting struct {
	MeetingKey          int       `json:"meeting_key"`
	MeetingName         string    `json:"meeting_name"`
	MeetingOfficialName string    `json:"meeting_official_name"`
	CircuitKey          int       `json:"circuit_key"`
	CircuitShortName    string    `json:"circuit_short_name"`
	CountryKey          int       `json:"country_key"`
	CountryCode         string    `json:"country_code"`
	CountryName         string    `json:"country_name"`
	Location            string    `json:"location"`
	GMTOffset           string    `json:"gmt_offset"`
	DateStart           time.Time `json:"date_start"`
	Year                int       `json:"year"`
}

// Session is one practice, qualifying, sprint or race session.
type Session struct {
	SessionKey       int       `json:"session_key"`
	SessionName      string    `json:"session_name"`
	SessionType      string    `json:"session_type"`
	MeetingKey       int       `json:"meeting_key"`
	CircuitKey       int       `json:"circuit_key"`
	CircuitShortName string    `json:"circuit_short_name"`
	CountryKey       int       `json:"country_key"`
	CountryCode      string    `json:"country_code"`
	CountryName      string    `json:"country_name"`
	Location         string    `json:"location"`
	GMTOffset        string    `json:"gmt_offset"`
	DateStart        time.Time `json:"date_start"`
	DateEnd          time.Time `json:"date_end"`
	Year             int       `json:"year"`
}

// Driver is a driver's entry in one session.
type Driver struct {
	DriverNumber  int    `json:"driver_number"`
	BroadcastName string `json:"broadcast_name"`
	FullName      string `json:"full_name"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	NameAcronym   string `json:"name_acronym"`
	TeamName      string `json:"team_name"`
	TeamColour    string `json:"team_colour"`
	CountryCode   string `json:"country_code"`
	HeadshotURL   string `json:"headshot_url"`
	MeetingKey    int    `json:"meeting_key"`
	SessionKey    int    `json:"session_key"`
}

// SessionResult is a driver's final classification in a session.
type SessionResult struct {
	Position     *int `json:"position"`
	DriverNumber int  `json:"driver_number"`
	NumberOfLaps *int `json:"number_of_laps"`
	DNF          bool `json:"dnf"`
	DNS          bool `json:"dns"`
	DSQ          bool `json:"dsq"`
	// Duration is seconds for single-part sessions, or an array of seconds
	// for multi-part qualifying.
	Duration    any `json:"duration"`
	GapToLeader any `json:"gap_to_leader"`
	MeetingKey  int `json:"meeting_key"`
	SessionKey  int `json:"session_key"`
}

// Lap is one timed lap, with sector splits and mini-sector segments.
type Lap struct {
	DriverNumber    int       `json:"driver_number"`
	LapNumber       int       `json:"lap_number"`
	LapDuration     *float64  `json:"lap_duration"`
	DurationSector1 *float64  `json:"duration_sector_1"`
	DurationSector2 *float64  `json:"duration_sector_2"`
	DurationSector3 *float64  `json:"duration_sector_3"`
	SegmentsSector1 []*int    `json:"segments_sector_1"`
	SegmentsSector2 []*int    `json:"segments_sector_2"`
	SegmentsSector3 []*int    `json:"segments_sector_3"`
	I1Speed         *float64  `json:"i1_speed"`
	I2Speed         *float64  `json:"i2_speed"`
	STSpeed         *float64  `json:"st_speed"`
	IsPitOutLap     bool      `json:"is_pit_out_lap"`
	DateStart       time.Time `json:"date_start"`
	MeetingKey      int       `json:"meeting_key"`
	SessionKey      int       `json:"session_key"`
}

// Stint is a continuous run on one tyre set.
type Stint struct {
	DriverNumber   int    `json:"driver_number"`
	StintNumber    int    `json:"stint_number"`
	Compound       string `json:"compound"`
	LapStart       int    `json:"lap_start"`
	LapEnd         int    `json:"lap_end"`
	TyreAgeAtStart *int   `json:"tyre_age_at_start"`
	MeetingKey     int    `json:"meeting_key"`
	SessionKey     int    `json:"session_key"`
}

// Position is a driver's running position at a point in time.
type Position struct {
	DriverNumber int       `json:"driver_number"`
	Position     int       `json:"position"`
	Date         time.Time `json:"date"`
	MeetingKey   int       `json:"meeting_key"`
	SessionKey   int       `json:"session_key"`
}

// Interval is a driver's live gap to the leader and to the car ahead.
type Interval struct {
	DriverNumber int       `json:"driver_number"`
	GapToLeader  any       `json:"gap_to_leader"`
	Interval     any       `json:"interval"`
	Date         time.Time `json:"date"`
	MeetingKey   int       `json:"meeting_key"`
	SessionKey   int       `json:"session_key"`
}

// PitStop is one visit to the pit lane.
type PitStop struct {
	DriverNumber int       `json:"driver_number"`
	LapNumber    int       `json:"lap_number"`
	PitDuration  *float64  `json:"pit_duration"`
	Date         time.Time `json:"date"`
	MeetingKey   int       `json:"meeting_key"`
	SessionKey   int       `json:"session_key"`
}

// RaceControlMessage is a message from race direction (flags, safety car,
// penalties).
type RaceControlMessage struct {
	Category     string    `json:"category"`
	Flag         string    `json:"flag"`
	Scope        string    `json:"scope"`
	Message      string    `json:"message"`
	DriverNumber *int      `json:"driver_number"`
	LapNumber    *int      `json:"lap_number"`
	Sector       *int      `json:"sector"`
	Date         time.Time `json:"date"`
	MeetingKey   int       `json:"meeting_key"`
	SessionKey   int       `json:"session_key"`
}

// WeatherSample is one trackside weather reading.
type WeatherSample struct {
	AirTemperature   float64   `json:"air_temperature"`
	TrackTemperature float64   `json:"track_temperature"`
	Humidity         float64   `json:"humidity"`
	Pressure         float64   `json:"pressure"`
	Rainfall         float64   `json:"rainfall"`
	WindDirection    float64   `json:"wind_direction"`
	WindSpeed        float64   `json:"wind_speed"`
	Date             time.Time `json:"date"`
	MeetingKey       int       `json:"meeting_key"`
	SessionKey       int       `json:"session_key"`
}

// TeamRadioClip is a broadcast team-radio exchange.
type TeamRadioClip struct {
	DriverNumber int       `json:"driver_number"`
	RecordingURL string    `json:"recording_url"`
	Date         time.Time `json:"date"`
	MeetingKey   int       `json:"meeting_key"`
	SessionKey   int       `json:"session_key"`
}
