package boot

import (
	"log"
	"uems/src/common"
	"uems/src/db"
	"uems/src/lib"
	"uems/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Area{},
		&models.Seat{},
		&models.Event{},
		&models.SeatConfiguration{},
		&models.CategoryPrice{},
		&models.Bill{},
		&models.Ticket{},
		&models.WalletBalance{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitScheduler() {
	common.ScheduleHoldSweeper()
	lib.StartScheduler()
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	log.Println("Jobs in queue:", len(sched.Jobs()))
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Printf("Error shutting down scheduler: %s\n", err.Error())
	}
}
