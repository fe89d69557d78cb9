package driver

import (
	"net/url"

	"github.com/khanhnv2901/iwtools/internal/results"
)

func websecDescriptor() descriptor {
	return formService{
		service:    results.Websec,
		submitPath: "/websec/api/v1/chsec",
		resultPath: "/websec/api/v1/get_result",
		submitForm: func(r Request) url.Values {
			return withKey(url.Values{
				"tested_url": {r.Target},
				"choosen_ip": {r.IP},
				"recheck":    {formBool(r.Recheck)},
				"dnsr":       {"on"},
			}, r.APIKey)
		},
		cachedField:      "id",
		checkMultipleIPs: true,
	}.descriptor()
}
