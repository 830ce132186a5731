package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/cccac/attendance-geofence/geofence"
)

type checkResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	IsWithin  bool    `json:"isWithin"`
}

// socketHandler runs a client connection. The client streams lat/lon pairs, one JSON object each, and gets one
// checkResponse back per pair, in order.
func (s *server) socketHandler(w http.ResponseWriter, r *http.Request) {
	log := logrus.WithFields(logrus.Fields{
		"component": "client",
		"remote":    r.RemoteAddr,
	})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		log.Error("Failed to set up websocket:", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal server error")

	ctx := r.Context()
	log.Debug("client connected")

	for {
		mt, reader, err := conn.Reader(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				log.Debug("client disconnected")
			default:
				log.Error("Failed to read from websocket:", err)
			}
			return
		}
		if mt != websocket.MessageText {
			// Consume the message and ignore it
			if _, err := io.Copy(io.Discard, reader); err != nil {
				log.Error("Failed to read from websocket:", err)
				return
			}
			continue
		}

		// A single message may carry several concatenated points.
		dec := json.NewDecoder(reader)
		for {
			var req checkRequest
			err = dec.Decode(&req)
			if errors.Is(err, io.EOF) {
				break
			}
			var p geofence.Point
			if err == nil {
				p, err = req.point()
			}
			if err != nil {
				log.WithField("err", err).Warn("undecodable coordinate")
				conn.Close(websocket.StatusUnsupportedData, "expected {\"latitude\":..,\"longitude\":..}")
				return
			}

			res := s.check(transportWebsocket, p)
			log.WithFields(logrus.Fields{
				"coordinate": p,
				"isWithin":   res.IsWithin,
			}).Debug("checked coordinate")

			err = wsjson.Write(ctx, conn, checkResponse{
				Latitude:  p.Latitude,
				Longitude: p.Longitude,
				IsWithin:  res.IsWithin,
			})
			if err != nil {
				log.Error("Failed to write to websocket:", err)
				return
			}
		}
	}
}
