package domain

// Defaults used when a push message arrives with no payload or one that
// cannot be parsed. Rendering a generic notification beats dropping the
// message on the floor.
const (
	DefaultTitle = "New notification"
	DefaultBody  = "You have a new notification."
	DefaultURL   = "/"
)

// Payload is the notification content delivered to each subscriber.
// URL is the deep-link target opened on click; empty means DefaultURL.
type Payload struct {
	Title string `json:"title" validate:"required,max=120"`
	Body  string `json:"body" validate:"required,max=1000"`
	URL   string `json:"url,omitempty" validate:"omitempty,max=500"`
}

// DefaultPayload is the fallback rendered for unparseable push messages.
func DefaultPayload() Payload {
	return Payload{Title: DefaultTitle, Body: DefaultBody, URL: DefaultURL}
}
