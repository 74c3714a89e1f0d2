// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler
