package results

import (
	"fmt"
	"strings"

	sharedErrors "github.com/khanhnv2901/iwtools/internal/shared/errors"
)

// Service identifies one of the vendor test types.
type Service string

const (
	Websec  Service = "websec"
	SSL     Service = "ssl"
	Darkweb Service = "darkweb"
	Email   Service = "email"
	Mobile  Service = "mobile"
	Cloud   Service = "cloud"
)

var allServices = []Service{Websec, SSL, Darkweb, Email, Mobile, Cloud}

var serviceTitles = map[Service]string{
	Websec:  "Website Security Test",
	SSL:     "SSL Security Test",
	Darkweb: "Dark Web Exposure Test",
	Email:   "Email Security Test",
	Mobile:  "Mobile App Security Test",
	Cloud:   "Cloud Security Test",
}

// Services lists every supported service in CLI order.
func Services() []Service {
	out := make([]Service, len(allServices))
	copy(out, allServices)
	return out
}

// ParseService resolves a case-insensitive service name.
func ParseService(name string) (Service, error) {
	s := Service(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := serviceTitles[s]; !ok {
		return "", fmt.Errorf("%w: %q", sharedErrors.ErrUnsupportedService, name)
	}
	return s, nil
}

func (s Service) String() string {
	return string(s)
}

// Title is the human readable test name, e.g. "SSL Security Test".
func (s Service) Title() string {
	if t, ok := serviceTitles[s]; ok {
		return t
	}
	return string(s)
}
