package chat_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatrelay/pkg/chat"
)

var _ = Describe("Transcript", func() {
	It("keeps messages in the order they were appended", func() {
		var t chat.Transcript
		t.AppendUser("hello")
		t.AppendAssistant("hi there")

		Expect(t.Len()).To(Equal(2))
		Expect(t.Messages()).To(Equal([]chat.Message{
			{Role: chat.RoleUser, Text: "hello"},
			{Role: chat.RoleAssistant, Text: "hi there"},
		}))
	})

	It("records errors as assistant messages", func() {
		var t chat.Transcript
		msg := t.AppendError(errors.New("upstream down"))

		Expect(msg.Role).To(Equal(chat.RoleAssistant))
		Expect(msg.Text).To(Equal("Error: upstream down"))
	})

	It("returns a copy of its messages", func() {
		var t chat.Transcript
		t.AppendUser("hello")

		msgs := t.Messages()
		msgs[0].Text = "changed"

		Expect(t.Messages()[0].Text).To(Equal("hello"))
	})
})
