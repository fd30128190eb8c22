package test

import (
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/code-payments/counter-program/pkg/retry"
	"github.com/code-payments/counter-program/pkg/retry/backoff"

	pg "github.com/code-payments/counter-program/pkg/database/postgres"
)

const (
	imageRepository = "postgres"
	imageTag        = "14"
	containerTTL    = 120 * time.Second
	containerPort   = "5432/tcp"

	startupAttempts = 50
	startupInterval = 500 * time.Millisecond
)

var testDbConfig = pg.Config{
	User:     "localtest",
	Password: "localpassword",
	DbName:   "testdb",
}

// StartPostgresDB runs a disposable postgres container and returns a pool
// connected to it. The container is removed by closeFunc, or automatically
// once it expires.
func StartPostgresDB(pool *dockertest.Pool) (db *sqlx.DB, closeFunc func(), err error) {
	log := logrus.StandardLogger().WithField("type", "database/postgres/test")
	closeFunc = func() {}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: imageRepository,
		Tag:        imageTag,
		Env: []string{
			"POSTGRES_USER=" + testDbConfig.User,
			"POSTGRES_PASSWORD=" + testDbConfig.Password,
			"POSTGRES_DB=" + testDbConfig.DbName,
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return nil, closeFunc, errors.Wrap(err, "failed to start postgres container")
	}

	closeFunc = func() {
		if err := pool.Purge(resource); err != nil {
			log.WithError(err).Warn("failed to purge postgres container")
		}
	}

	// Expire() never returns an error
	_ = resource.Expire(uint(containerTTL.Seconds()))

	config := testDbConfig
	config.Host = resource.GetBoundIP(containerPort)
	config.Port, err = strconv.Atoi(resource.GetPort(containerPort))
	if err != nil {
		closeFunc()
		return nil, func() {}, errors.Wrap(err, "invalid postgres container port")
	}

	_, err = retry.Retry(
		func() error {
			db, err = pg.Open(&config)
			return err
		},
		retry.Limit(startupAttempts),
		retry.Backoff(backoff.Constant(startupInterval), startupInterval),
	)
	if err != nil {
		closeFunc()
		return nil, func() {}, errors.Wrap(err, "timed out waiting for postgres container to become available")
	}

	log.WithField("dsn_host", config.Host).Debug("postgres container ready")
	return db, closeFunc, nil
}
