package mask

import "testing"

func TestEmails(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"embedded address",
			"550 5.1.1 mailbox john.doe@example.com does not exist",
			"550 5.1.1 mailbox jo***@example.com does not exist",
		},
		{
			"short local part",
			"rejected sender a@example.com",
			"rejected sender a***@example.com",
		},
		{
			"multiple addresses",
			"alice@one.org forwarded to bob@two.org",
			"al***@one.org forwarded to bo***@two.org",
		},
		{
			"no address",
			"rate limit exceeded",
			"rate limit exceeded",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Emails(tc.in); got != tc.want {
				t.Errorf("Emails(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
