// internal/notification/models.go

package notification

// Type identifies what a notification is about
type Type string

const (
	TypeMatchRequest  Type = "match_request"
	TypeMatchResponse Type = "match_response"
)

// Channel is a delivery channel
type Channel string

const (
	ChannelRealtime Channel = "realtime"
	ChannelPush     Channel = "push"
	ChannelEmail    Channel = "email"
	ChannelSMS      Channel = "sms"
)

// Notification is addressed to one user. Title and Body are rendered from the
// type's template when left empty.
type Notification struct {
	RecipientID string
	Type        Type
	Title       string
	Body        string
	// Data is passed to templates and delivered as the event payload
	Data map[string]string
}

// EmailMessage is a single outgoing email
type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// SMSMessage is a single outgoing text message
type SMSMessage struct {
	To   string
	Body string
}

// PushMessage is sent to every device token of one user
type PushMessage struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

// Channels selects which offline channels are enabled
type Channels struct {
	Email bool
	Push  bool
	SMS   bool
}
