package directory

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Contract is the resolved shape of the Remote Directory API: the ordered
// candidate bases, the names the review sub-resource goes by, and the fields
// that may carry a record's id.
type Contract struct {
	Bases           []string
	ReviewPaths     []string
	IDFields        []string
	CommentRequired bool
	AttemptTimeout  time.Duration
	UploadTimeout   time.Duration
}

// DefaultContract returns the contract of the public TiendasApp deployment.
func DefaultContract() Contract {
	return Contract{
		Bases: []string{
			"https://tiendasappbackend.onrender.com/api",
			"https://tiendasappbackend.onrender.com",
		},
		ReviewPaths:    []string{"reviews", "resenas", "reseñas"},
		IDFields:       []string{"_id", "id"},
		AttemptTimeout: 10 * time.Second,
		UploadTimeout:  30 * time.Second,
	}
}

// Validate checks the contract is usable.
func (c Contract) Validate() error {
	if len(c.Bases) == 0 {
		return fmt.Errorf("directory contract: at least one base is required")
	}
	for _, b := range c.Bases {
		u, err := url.Parse(b)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("directory contract: invalid base %q", b)
		}
	}
	if len(c.ReviewPaths) == 0 {
		return fmt.Errorf("directory contract: at least one review path is required")
	}
	if len(c.IDFields) == 0 {
		return fmt.Errorf("directory contract: at least one id field is required")
	}
	if c.AttemptTimeout <= 0 {
		return fmt.Errorf("directory contract: attempt timeout must be positive")
	}
	return nil
}

func (c Contract) uploadTimeout() time.Duration {
	if c.UploadTimeout > c.AttemptTimeout {
		return c.UploadTimeout
	}
	return c.AttemptTimeout
}

// endpoint joins a base with escaped path segments.
func endpoint(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}
