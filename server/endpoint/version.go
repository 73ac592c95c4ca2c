package endpoint

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/pullfeed/server"
	"github.com/kbukum/pullfeed/version"
)

// VersionResponse is the body of the version endpoint.
type VersionResponse struct {
	version.Info
	Release bool `json:"release"`
}

// Version reports what build is serving the feed.
func Version() gin.HandlerFunc {
	return func(c *gin.Context) {
		info := version.Get()
		server.RespondOK(c, VersionResponse{Info: info, Release: info.IsRelease()})
	}
}
