package services

import (
	"context"
	"log"
	"parklopediaAPI/internal/alerts"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler owns the periodic sweeps: vehicle alerts hourly, booking reminders
// hourly on the half hour, document expiry daily. The alert and expiry sweeps
// stay callable over HTTP for manual runs; the scheduler just drives them on a
// clock.
type Scheduler struct {
	cron    *cron.Cron
	alerts  *AlertService
	garage  *GarageService
	parking *ParkingService
}

func NewScheduler(alertService *AlertService, garageService *GarageService, parkingService *ParkingService) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		alerts:  alertService,
		garage:  garageService,
		parking: parkingService,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("@hourly", s.runAlertSweep)
	if err != nil {
		return err
	}

	// Offset from the alert sweep so the two never contend.
	_, err = s.cron.AddFunc("30 * * * *", s.runBookingReminderSweep)
	if err != nil {
		return err
	}

	// 06:00 server time, before the morning usage peak.
	_, err = s.cron.AddFunc("0 6 * * *", s.runExpirySweep)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("Scheduler started: hourly alert sweep, hourly booking reminders, daily document expiry sweep")
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Scheduler stopped")
}

func (s *Scheduler) runAlertSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := s.alerts.Dispatch(ctx, &alerts.DispatchRequest{CheckAll: true})
	if err != nil {
		log.Printf("Scheduler: Alert sweep failed: %v", err)
		return
	}
	log.Printf("Scheduler: Alert sweep checked %d alerts, %d triggered, %d notifications sent",
		result.AlertsChecked, result.TriggeredAlerts, result.NotificationsSent)
}

func (s *Scheduler) runBookingReminderSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := s.parking.SendBookingReminders(ctx)
	if err != nil {
		log.Printf("Scheduler: Booking reminder sweep failed: %v", err)
		return
	}
	log.Printf("Scheduler: Booking reminder sweep found %d bookings, %d reminders sent",
		result.BookingsFound, result.RemindersSent)
}

func (s *Scheduler) runExpirySweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := s.garage.CheckDocumentExpiry(ctx)
	if err != nil {
		log.Printf("Scheduler: Document expiry sweep failed: %v", err)
		return
	}
	log.Printf("Scheduler: Document expiry sweep found %d documents, %d reminders sent",
		result.DocumentsFound, result.NotificationsSent)
}
