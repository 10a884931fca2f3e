package main

import (
	"flag"

	"p9e.in/towerpro/config"
)

// Seeds users and the inspector roster:
//
//	go run ./scripts -file roster.json
func main() {
	file := flag.String("file", "roster.json", "seed file with users and inspectors")
	flag.Parse()
	log := config.GetLogger()

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("seed setup failed")
	}
	db, err := config.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("seed setup failed")
	}

	seed, err := config.ReadSeedFile(*file)
	if err != nil {
		log.WithError(err).Fatal("Failed to read seed file")
	}
	if err := config.Seed(db, seed); err != nil {
		log.WithError(err).Fatal("Seeding failed")
	}
	log.Info("Seeding complete")
}
