package driver

import (
	"net/url"

	"github.com/khanhnv2901/iwtools/internal/results"
)

func emailDescriptor() descriptor {
	return formService{
		service:    results.Email,
		submitPath: "/email/api/v1/check",
		resultPath: "/email/api/v1/get_result",
		submitForm: func(r Request) url.Values {
			return withKey(url.Values{
				"domain":            {r.Target},
				"recheck":           {formBool(r.Recheck)},
				"show_test_results": {"false"},
			}, r.APIKey)
		},
		cachedField:     "test_id",
		closeConnection: true,
	}.descriptor()
}
