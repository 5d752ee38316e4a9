package hashcash

import "time"

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Metrics interface {
		ObserveMint(algorithm string, workers int, err error, attempts uint64, started time.Time)
		ObserveVerify(algorithm string, valid bool, err error)
	}
)
