package llmclient

import "testing"

func TestConvertMessages_SkipsSystemRole(t *testing.T) {
	msgs := []Message{
		{Role: RoleSystem, Content: "you are a helpful assistant"},
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi there"},
	}
	out := convertMessages(msgs)
	if len(out) != 2 {
		t.Fatalf("expected system message to be dropped, got %d messages", len(out))
	}
}
