// ZXIS Run keeps a runner's heart rate inside a selected target band by
// estimating BPM from a raw ECG amplitude stream and nudging the treadmill
// motor. Mode tokens ("diet", "training") arrive on stdin; everything else
// is observable over the HTTP dashboard, NATS and the session file.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/ZXIS-dev/ZXIS-Run/internal/app"
	"github.com/ZXIS-dev/ZXIS-Run/internal/ecg"
	"github.com/ZXIS-dev/ZXIS-Run/internal/models"
	"github.com/ZXIS-dev/ZXIS-Run/internal/motor"
	"github.com/ZXIS-dev/ZXIS-Run/internal/server"
	"github.com/ZXIS-dev/ZXIS-Run/internal/session"
	"github.com/ZXIS-dev/ZXIS-Run/internal/stream"
)

func main() {
	var (
		natsURL     = flag.String("nats", "", "NATS url for wave/status publishing (empty disables)")
		httpAddr    = flag.String("addr", "", "dashboard address (overrides settings, empty keeps them)")
		staticDir   = flag.String("static", "./web", "dashboard static file root")
		sessionPath = flag.String("session", "", "write the workout as a Parquet file on exit")
		simHR       = flag.Float64("sim-hr", 72, "heart rate of the built-in signal simulator")
		simNoise    = flag.Float64("sim-noise", 0.02, "noise amplitude of the simulator")
	)
	flag.Parse()

	settings := models.DefaultSettings()
	if err := settings.Load(); err != nil {
		log.Printf("loading settings: %v (using defaults)", err)
	}
	if *natsURL != "" {
		settings.NATSUrl = *natsURL
	}
	if *httpAddr != "" {
		settings.HTTPAddr = *httpAddr
	}

	source := ecg.NewSim(float64(settings.SampleRateHz), *simHR, *simNoise)
	svc := app.New(settings, source, &motor.Console{})

	if settings.NATSUrl != "" {
		nc, err := stream.Connect(settings.NATSUrl)
		if err != nil {
			log.Fatal(err)
		}
		pub := stream.NewPublisher(nc)
		defer pub.Close()
		svc.SetPublisher(pub)
	}

	var recorder *session.Recorder
	if *sessionPath != "" {
		recorder = session.NewRecorder(time.Now())
		svc.SetRecorder(recorder)
	}

	if settings.HTTPAddr != "" {
		srv := server.New(svc, svc.Badges())
		svc.SetHub(srv.Hub())
		go func() {
			log.Printf("dashboard on %s", settings.HTTPAddr)
			if err := http.ListenAndServe(settings.HTTPAddr, srv.Handler(*staticDir)); err != nil {
				log.Printf("dashboard stopped: %v", err)
			}
		}()
	}

	go svc.ReadModesFrom(os.Stdin)

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		<-ch
		log.Println("stopping")
		svc.Stop()
	}()

	log.Printf("ZXIS Run ready (%d Hz). Enter mode: diet / training", settings.SampleRateHz)
	svc.Run()

	if recorder != nil && recorder.Len() > 0 {
		if err := recorder.WriteFile(*sessionPath); err != nil {
			log.Printf("writing session: %v", err)
		} else {
			log.Printf("session written to %s (%d rows)", *sessionPath, recorder.Len())
		}
	}
}
