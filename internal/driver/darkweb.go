package driver

import (
	"net/url"

	"github.com/khanhnv2901/iwtools/internal/results"
)

func darkwebDescriptor() descriptor {
	return formService{
		service:    results.Darkweb,
		submitPath: "/darkweb/api/v1/scan",
		resultPath: "/darkweb/api/v1/get_result",
		submitForm: func(r Request) url.Values {
			return withKey(url.Values{
				"domain":   {r.Target},
				"recheck":  {formBool(r.Recheck)},
				"no_limit": {"1"},
				"dnsr":     {"on"},
			}, r.APIKey)
		},
		cachedField: "id",
	}.descriptor()
}
