package main

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/cccac/attendance-geofence/geofence"
)

var (
	_listenAddr string
	_socketPath string
	_polygon    string
	_logLevel   string
	_logCallers bool
)

func init() {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})

	if err := loadDotEnv(); err != nil {
		logrus.WithError(err).Warn("ignoring .env")
	}

	flag.StringVar(&_listenAddr, "listenAddr", getEnv("LISTEN_ADDR", ":8080"), "Address to listen on for HTTP and websocket connections")
	flag.StringVar(&_socketPath, "socketPath", getEnv("SOCKET_PATH", "/check/stream"), "Path to websocket")
	flag.StringVar(&_polygon, "polygon", getEnv("GEOFENCE_POLYGON", ""), "Space separated lat,lon vertices replacing the built-in area")
	flag.StringVar(&_logLevel, "logLevel", getEnv("LOG_LEVEL", "info"), "Log level to use")
	flag.BoolVar(&_logCallers, "logCallers", false, "Whether to log callers")
}

// loadDotEnv fills in unset environment variables from filenames (".env" if none are given). A missing file is not an
// error, a malformed one is.
func loadDotEnv(filenames ...string) error {
	err := godotenv.Load(filenames...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// loadGeofence returns the fence described by polygon, or the built-in one if polygon is empty.
func loadGeofence(polygon string) (*geofence.Geofence, error) {
	if strings.TrimSpace(polygon) == "" {
		return geofence.Default(), nil
	}

	raw, err := geofence.ParsePolygon(polygon)
	if err != nil {
		return nil, err
	}
	return geofence.New(raw), nil
}

func main() {
	flag.Parse()

	lvl, err := logrus.ParseLevel(_logLevel)
	if err != nil {
		logrus.Fatalln("Can't parse log level:", err)
	}
	logrus.SetReportCaller(_logCallers)
	logrus.SetLevel(lvl)
	if lvl < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	logrus.Info("Starting up")

	fence, err := loadGeofence(_polygon)
	if err != nil {
		logrus.Fatalln("Can't parse geofence polygon:", err)
	}

	log := logrus.WithFields(logrus.Fields{
		"vertices": fence.Len(),
		"enabled":  fence.Enabled(),
	})
	if fence.Enabled() {
		log.Info("geofence loaded")
	} else {
		log.Warn("geofence has fewer than 3 vertices, every check will be rejected")
	}

	srv := newServer(fence)

	logrus.WithField("addr", _listenAddr).Info("Handlers configured, app started")

	err = srv.router(_socketPath).Run(_listenAddr)
	if err != nil {
		logrus.Fatalln("failed to start server:", err)
	}
}
