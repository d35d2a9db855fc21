package domain

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is the single user-visible outcome of a façade operation.
type Notification struct {
	Severity Severity
	Code     string
	Message  string

	Route       *RouteResult
	Assignments []Assignment
	Unmet       []string
	ShareLink   string
}

func (n Notification) OK() bool { return n.Severity == SeveritySuccess }
