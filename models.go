package classtop

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/hashid/pkg/hashid"
)

// ManagedClient is a classroom device registered with the management server.
// Timestamps stay strings on the wire: the server emits zone-less values.
type ManagedClient struct {
	ID          int     `json:"id"`
	UUID        string  `json:"uuid"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	APIURL      string  `json:"api_url"`
	APIKey      *string `json:"api_key,omitempty"`
	LastSync    *string `json:"last_sync,omitempty"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

// RegisterClientPayload creates a managed client.
type RegisterClientPayload struct {
	UUID        string  `json:"uuid"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	APIURL      string  `json:"api_url"`
	APIKey      *string `json:"api_key,omitempty"`
}

// Validate will validate the payload
func (r RegisterClientPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.APIURL, validation.Required, is.URL),
		validation.Field(&r.UUID, is.UUID),
	)
}

// normalize fills the UUID from the API URL when the caller omitted it, so
// re-registering the same device stays idempotent on the server side.
func (r *RegisterClientPayload) normalize() {
	if r.UUID != "" {
		return
	}

	if id, err := hashid.NewUUID(r.APIURL); err == nil {
		r.UUID = id.String()
	}
}

// UpdateClientPayload carries partial updates; nil fields are left untouched
// by the server.
type UpdateClientPayload struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	APIURL      *string `json:"api_url,omitempty"`
	APIKey      *string `json:"api_key,omitempty"`
}

// Validate will validate the payload
func (u UpdateClientPayload) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Name, validation.Length(1, 200)),
		validation.Field(&u.APIURL, is.URL),
	)
}

// Course is course data synced from a managed client.
type Course struct {
	ID               int     `json:"id"`
	ClientID         int     `json:"client_id"`
	CourseIDOnClient int     `json:"course_id_on_client"`
	Name             string  `json:"name"`
	Teacher          *string `json:"teacher,omitempty"`
	Location         *string `json:"location,omitempty"`
	Color            *string `json:"color,omitempty"`
	Note             *string `json:"note,omitempty"`
}

// ScheduleEntry is a timetable slot synced from a managed client.
type ScheduleEntry struct {
	ID              int     `json:"id"`
	ClientID        int     `json:"client_id"`
	EntryIDOnClient int     `json:"entry_id_on_client"`
	CourseID        int     `json:"course_id"`
	CourseName      *string `json:"course_name,omitempty"`
	Teacher         *string `json:"teacher,omitempty"`
	Location        *string `json:"location,omitempty"`
	Color           *string `json:"color,omitempty"`
	DayOfWeek       int     `json:"day_of_week"`
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	Weeks           []int   `json:"weeks,omitempty"`
	Note            *string `json:"note,omitempty"`
}

// Statistics are fleet-wide aggregates.
type Statistics struct {
	TotalClients         int64 `json:"total_clients"`
	OnlineClients        int64 `json:"online_clients"`
	TotalCourses         int64 `json:"total_courses"`
	TotalScheduleEntries int64 `json:"total_schedule_entries"`
}

// ClientStatistics are per-device aggregates.
type ClientStatistics struct {
	ClientID             int     `json:"client_id"`
	ClientName           string  `json:"client_name"`
	TotalCourses         int64   `json:"total_courses"`
	TotalScheduleEntries int64   `json:"total_schedule_entries"`
	LastSync             *string `json:"last_sync,omitempty"`
}

// Setting is a server-side configuration entry.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Health is the unauthenticated server health report.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// Message is the server's acknowledgment body for mutations.
type Message struct {
	Message string `json:"message"`
}

// Pagination describes a page of results. Pages are 1-indexed.
type Pagination struct {
	Page       int64 `json:"page"`
	PageSize   int64 `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int64 `json:"total_pages"`
}

// ClientPage is one page of managed clients.
type ClientPage struct {
	Data       []ManagedClient `json:"data"`
	Pagination Pagination      `json:"pagination"`
}
