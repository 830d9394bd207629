package relay

import "time"

type Configuration struct {
	Name     string
	Batch    int
	Interval time.Duration
}
