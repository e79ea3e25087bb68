package boot

import (
	"hms/src/common"
	"hms/src/db"
	"hms/src/lib"
	"hms/src/models"
	"hms/src/utils"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Reservation{},
		&models.ModularReservation{},
		&models.ReservationProduct{},
		&models.ReservationPayment{},
		&models.ReservationComment{},
		&models.ProductModular{},
		&models.SpaProduct{},
		&models.Invoice{},
		&models.InvoiceLine{},
		&models.InvoicePayment{},
		&models.OutboxTask{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler starts the two background sweeps: the outbox retry loop and
// the nightly global status sync.
func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}

	outboxJob, err := sched.NewJob(
		gocron.DurationJob(2*time.Minute),
		gocron.NewTask(common.ProcessPendingOutboxTasks),
	)
	if err != nil {
		log.Printf("Error scheduling outbox job: %s\n", err.Error())
		return
	}
	log.Printf("Outbox job ID: %s\n", outboxJob.ID().String())

	syncJob, err := sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(4, 0, 0))),
		gocron.NewTask(func() {
			result := utils.SyncAllReservationStatuses("Sistema")
			if !result.Success {
				log.Printf("Nightly sync failed: %s\n", result.Error)
				return
			}
			log.Println(result.Message)
		}),
	)
	if err != nil {
		log.Printf("Error scheduling sync job: %s\n", err.Error())
		return
	}
	log.Printf("Sync job ID: %s\n", syncJob.ID().String())

	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
		return
	}
}
