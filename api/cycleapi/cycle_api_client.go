package cycleapi

import (
	"net/url"
	"strconv"
	"time"

	"cycle-server/api"
	"cycle-server/models/calendar"
	"cycle-server/models/cycle"
	"cycle-server/models/observation"
)

// CycleApiClient embeds the common HTTPClient
type CycleApiClient struct {
	*api.HTTPClient
}

// NewCycleApiClient creates a new instance of CycleApiClient
func NewCycleApiClient(httpClient *api.HTTPClient) *CycleApiClient {
	return &CycleApiClient{
		HTTPClient: httpClient,
	}
}

// PutObservation creates or replaces the observation on o.Date.
func (c *CycleApiClient) PutObservation(userID string, o observation.Observation) (*observation.Observation, error) {
	var response observation.Observation
	err := c.Request("PUT", userPath(userID)+"/observations/"+observation.FormatDate(o.Date), nil, o, &response)
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *CycleApiClient) GetObservations(userID string, from, to time.Time) ([]observation.Observation, error) {
	var response []observation.Observation
	q := url.Values{}
	setDate(q, "from", from)
	setDate(q, "to", to)
	if err := c.Request("GET", withQuery(userPath(userID)+"/observations", q), nil, nil, &response); err != nil {
		return nil, err
	}
	return response, nil
}

// GetStatistics retrieves the cycle statistics; a zero now lets the server
// use its own clock.
func (c *CycleApiClient) GetStatistics(userID string, now time.Time) (*cycle.Statistics, error) {
	var response cycle.Statistics
	q := url.Values{}
	setDate(q, "now", now)
	if err := c.Request("GET", withQuery(userPath(userID)+"/cycle/statistics", q), nil, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

func (c *CycleApiClient) GetPredictions(userID string, months int, now time.Time) ([]observation.Observation, error) {
	var response []observation.Observation
	q := url.Values{}
	setDate(q, "now", now)
	if months > 0 {
		q.Set("months", strconv.Itoa(months))
	}
	if err := c.Request("GET", withQuery(userPath(userID)+"/cycle/predictions", q), nil, nil, &response); err != nil {
		return nil, err
	}
	return response, nil
}

func (c *CycleApiClient) GetCalendar(userID string, from, to, now time.Time) ([]calendar.CalendarDay, error) {
	var response []calendar.CalendarDay
	q := url.Values{}
	setDate(q, "from", from)
	setDate(q, "to", to)
	setDate(q, "now", now)
	if err := c.Request("GET", withQuery(userPath(userID)+"/calendar", q), nil, nil, &response); err != nil {
		return nil, err
	}
	for i := range response {
		response[i].Date, _ = observation.ParseDate(response[i].DateString)
	}
	return response, nil
}

func userPath(userID string) string {
	return "/v1/users/" + url.PathEscape(userID)
}

func setDate(q url.Values, key string, t time.Time) {
	if !t.IsZero() {
		q.Set(key, observation.FormatDate(t))
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
