package driver

import (
	"net/url"

	"github.com/khanhnv2901/iwtools/internal/results"
)

func sslDescriptor() descriptor {
	return formService{
		service:    results.SSL,
		submitPath: "/ssl/api/v1/check",
		resultPath: "/ssl/api/v1/get_result",
		submitForm: func(r Request) url.Values {
			return withKey(url.Values{
				"domain":            {r.Target},
				"choosen_ip":        {r.IP},
				"recheck":           {formBool(r.Recheck)},
				"show_test_results": {"false"},
			}, r.APIKey)
		},
		cachedField:      "id",
		extra:            url.Values{"verbosity": {"1"}},
		checkMultipleIPs: true,
	}.descriptor()
}
