package mongo

import (
	"fmt"

	"github.com/KretovDmitry/order-management-service/internal/config"
	"github.com/KretovDmitry/order-management-service/pkg/logger"
	"github.com/juju/mgo/v3"
)

// Connect dials MongoDB and returns the root session every call is copied from.
func Connect(cfg *config.Config, logger logger.Logger) (*mgo.Session, error) {
	info, err := mgo.ParseURL(cfg.Storage.URI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mongodb url: %w", err)
	}
	info.Timeout = cfg.Storage.ConnectTimeout

	// Driver internals go to the application log.
	mgo.SetLogger(logger)

	session, err := mgo.DialWithInfo(info)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	session.SetMode(mgo.Monotonic, true)
	session.SetSocketTimeout(cfg.Storage.OperationTimeout)

	return session, nil
}
