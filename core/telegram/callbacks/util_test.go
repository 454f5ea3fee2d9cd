package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		cb      *tele.Callback
		key     string
		payload string
	}{
		{nil, "", ""},
		{&tele.Callback{Data: "\fview_next"}, "view_next", ""},
		{&tele.Callback{Data: "\fview_col_prev|3"}, "view_col_prev", "3"},
		{&tele.Callback{Unique: "view_copy", Data: "x|y"}, "view_copy", "x|y"},
		{&tele.Callback{Data: "legacy"}, "legacy", ""},
	}
	for _, tc := range cases {
		key, payload := ParseCallbackData(tc.cb)
		if key != tc.key || payload != tc.payload {
			t.Errorf("ParseCallbackData(%+v) = %q, %q; want %q, %q", tc.cb, key, payload, tc.key, tc.payload)
		}
	}
}
