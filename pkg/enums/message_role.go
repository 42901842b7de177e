package enums

// MessageRole identifies the author side of a chat message.
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

// String implements fmt.Stringer.
func (m MessageRole) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MessageRole.
func (m MessageRole) IsValid() bool {
	return m == MessageRoleUser || m == MessageRoleAssistant
}
