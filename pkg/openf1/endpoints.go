package openf1

import (
	"context"
	"net/url"
	"strconv"
)

// Endpoint paths of the OpenF1 API served through this client.
const (
	EndpointMeetings      = "meetings"
	EndpointSessions      = "sessions"
	EndpointDrivers       = "drivers"
	EndpointSessionResult = "session_result"
	EndpointLaps          = "laps"
	EndpointStints        = "stints"
	EndpointPosition      = "position"
	EndpointIntervals     = "intervals"
	EndpointPit           = "pit"
	EndpointRaceControl   = "race_control"
	EndpointWeather       = "weather"
	EndpointTeamRadio     = "team_radio"
)

// latestKey is the upstream's magic parameter value selecting the most
// recent meeting or session.
const latestKey = "latest"

func setInt(v url.Values, key string, value int) {
	if value != 0 {
		v.Set(key, strconv.Itoa(value))
	}
}

func setString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// MeetingQuery filters the meetings endpoint. Zero-value fields are
// omitted. Latest selects the most recent meeting and overrides MeetingKey.
type MeetingQuery struct {
	Year        int
	MeetingKey  int
	CountryName string
	Latest      bool
}

func (q MeetingQuery) Values() url.Values {
	v := url.Values{}
	setInt(v, "year", q.Year)
	setString(v, "country_name", q.CountryName)
	if q.Latest {
		v.Set("meeting_key", latestKey)
	} else {
		setInt(v, "meeting_key", q.MeetingKey)
	}
	return v
}

// SessionQuery filters the sessions endpoint. Latest selects the most
// recent session and overrides SessionKey.
type SessionQuery struct {
	Year        int
	MeetingKey  int
	SessionKey  int
	SessionName string
	SessionType string
	CountryName string
	Latest      bool
}

func (q SessionQuery) Values() url.Values {
	v := url.Values{}
	setInt(v, "year", q.Year)
	setInt(v, "meeting_key", q.MeetingKey)
	setString(v, "session_name", q.SessionName)
	setString(v, "session_type", q.SessionType)
	setString(v, "country_name", q.CountryName)
	if q.Latest {
		v.Set("session_key", latestKey)
	} else {
		setInt(v, "session_key", q.SessionKey)
	}
	return v
}

// SessionScopedQuery filters the per-session endpoints that share the same
// three parameters.
type SessionScopedQuery struct {
	MeetingKey   int
	SessionKey   int
	DriverNumber int
}

func (q SessionScopedQuery) Values() url.Values {
	v := url.Values{}
	setInt(v, "meeting_key", q.MeetingKey)
	setInt(v, "session_key", q.SessionKey)
	setInt(v, "driver_number", q.DriverNumber)
	return v
}

// LapQuery filters the laps endpoint.
type LapQuery struct {
	MeetingKey   int
	SessionKey   int
	DriverNumber int
	LapNumber    int
}

func (q LapQuery) Values() url.Values {
	v := SessionScopedQuery{MeetingKey: q.MeetingKey, SessionKey: q.SessionKey, DriverNumber: q.DriverNumber}.Values()
	setInt(v, "lap_number", q.LapNumber)
	return v
}

// RaceControlQuery filters the race_control endpoint.
type RaceControlQuery struct {
	MeetingKey   int
	SessionKey   int
	DriverNumber int
	Category     string
	Flag         string
}

func (q RaceControlQuery) Values() url.Values {
	v := SessionScopedQuery{MeetingKey: q.MeetingKey, SessionKey: q.SessionKey, DriverNumber: q.DriverNumber}.Values()
	setString(v, "category", q.Category)
	setString(v, "flag", q.Flag)
	return v
}

// Meetings lists Grand Prix weekends matching the query.
func (c *Client) Meetings(ctx context.Context, q MeetingQuery, opts ...FetchOption) ([]Meeting, error) {
	return Get[[]Meeting](ctx, c, EndpointMeetings, q.Values(), opts...)
}

// Sessions lists sessions matching the query.
func (c *Client) Sessions(ctx context.Context, q SessionQuery, opts ...FetchOption) ([]Session, error) {
	return Get[[]Session](ctx, c, EndpointSessions, q.Values(), opts...)
}

// Drivers lists driver entries for a session.
func (c *Client) Drivers(ctx context.Context, q SessionScopedQuery, opts ...FetchOption) ([]Driver, error) {
	return Get[[]Driver](ctx, c, EndpointDrivers, q.Values(), opts...)
}

// SessionResults lists final classifications for a session.
func (c *Client) SessionResults(ctx context.Context, q SessionScopedQuery, opts ...FetchOption) ([]SessionResult, error) {
	return Get[[]SessionResult](ctx, c, EndpointSessionResult, q.Values(), opts...)
}

// Laps lists timed laps matching the query.
func (c *Client) Laps(ctx context.Context, q LapQuery, opts ...FetchOption) ([]Lap, error) {
	return Get[[]Lap](ctx, c, EndpointLaps, q.Values(), opts...)
}

// Stints lists tyre stints for a session.
func (c *Client) Stints(ctx context.Context, q SessionScopedQuery, opts ...FetchOption) ([]Stint, error) {
	return Get[[]Stint](ctx, c, EndpointStints, q.Values(), opts...)
}

// Positions lists running-position samples for a session.
func (c *Client) Positions(ctx context.Context, q SessionScopedQuery, opts ...FetchOption) ([]Position, error) {
	return Get[[]Position](ctx, c, EndpointPosition, q.Values(), opts...)
}

// Intervals lists live gap samples for a session.
func (c *Client) Intervals(ctx context.Context, q SessionScopedQuery, opts ...FetchOption) ([]Interval, error) {
	return Get[[]Interval](ctx, c, EndpointIntervals, q.Values(), opts...)
}

// PitStops lists pit-lane visits for a session.
func (c *Client) PitStops(ctx context.Context, q SessionScopedQuery, opts ...FetchOption) ([]PitStop, error) {
	return Get[[]PitStop](ctx, c, EndpointPit, q.Values(), opts...)
}

// RaceControlMessages lists race-direction messages for a session.
func (c *Client) RaceControlMessages(ctx context.Context, q RaceControlQuery, opts ...FetchOption) ([]RaceControlMessage, error) {
	return Get[[]RaceControlMessage](ctx, c, EndpointRaceControl, q.Values(), opts...)
}

// Weather lists trackside weather samples for a session.
func (c *Client) Weather(ctx context.Context, q SessionScopedQuery, opts ...FetchOption) ([]WeatherSample, error) {
	return Get[[]WeatherSample](ctx, c, EndpointWeather, q.Values(), opts...)
}

// TeamRadio lists broadcast team-radio clips for a session.
func (c *Client) TeamRadio(ctx context.Context, q SessionScopedQuery, opts ...FetchOption) ([]TeamRadioClip, error) {
	return Get[[]TeamRadioClip](ctx, c, EndpointTeamRadio, q.Values(), opts...)
}
