// Package karyotype serves the karyotype API on App Engine.  The band table
// is read from BAND_DATA, or the hg38 table when unset.  Band tables in GCS
// are read with the bearer token of the request.
package karyotype

import (
	"net/http"
	"os"

	"google.golang.org/appengine"

	"github.com/googlegenomics/karyotype/api"
	"github.com/googlegenomics/karyotype/karyotype"
	"github.com/googlegenomics/karyotype/source"
)

func init() {
	location := os.Getenv("BAND_DATA")
	if location == "" {
		location = source.DefaultLocation
	}
	server := api.NewServer(location, newAppEngineClient, karyotype.Options{})
	http.Handle("/", server.Handler())
}

func newAppEngineClient(req *http.Request) (source.Client, error) {
	return source.NewClientFromBearerToken(req.WithContext(appengine.NewContext(req)))
}
