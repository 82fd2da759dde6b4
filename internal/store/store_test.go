package store

import (
	"testing"
	"time"

	"tostaduria-backend/internal/models"

	"gorm.io/gorm"
)

func TestCommitPublishesEventsOnSuccess(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	events, cancel := s.Subscribe(8)
	defer cancel()

	err = s.Commit(func(tx *gorm.DB) ([]Event, error) {
		lot := models.GreenCoffeeLot{ID: "l1", ClientName: "Café Andes", Variety: "Caturra", EntryDate: time.Now()}
		if err := tx.Create(&lot).Error; err != nil {
			return nil, err
		}
		return []Event{{Table: "green_coffee_lots", ID: "l1"}}, nil
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Table != "green_coffee_lots" || ev.ID != "l1" || ev.Deleted {
			t.Errorf("evento = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("el commit no publicó su evento")
	}
}

func TestCommitRollbackPublishesNothing(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	events, cancel := s.Subscribe(8)
	defer cancel()

	err = s.Commit(func(tx *gorm.DB) ([]Event, error) {
		lot := models.GreenCoffeeLot{ID: "l1", ClientName: "Café Andes", Variety: "Caturra", EntryDate: time.Now()}
		if err := tx.Create(&lot).Error; err != nil {
			return nil, err
		}
		return []Event{{Table: "green_coffee_lots", ID: "l1"}}, gorm.ErrInvalidData
	})
	if err == nil {
		t.Fatal("el Commit fallido no devolvió error")
	}

	// la transacción revirtió: ni fila ni evento
	var count int64
	s.DB().Model(&models.GreenCoffeeLot{}).Count(&count)
	if count != 0 {
		t.Error("la fila sobrevivió al rollback")
	}
	select {
	case ev := <-events:
		t.Errorf("un commit revertido publicó %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestApplyRemoteDoesNotEcho(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	events, cancel := s.Subscribe(8)
	defer cancel()

	lot := models.GreenCoffeeLot{ID: "l1", ClientName: "Café Andes", Variety: "Caturra", EntryDate: time.Now(), UpdatedAt: time.Now()}
	if err := s.ApplyRemote("green_coffee_lots", &lot); err != nil {
		t.Fatalf("ApplyRemote: %v", err)
	}

	select {
	case ev := <-events:
		t.Errorf("lo aplicado desde remoto publicó %+v: se re-empujaría en bucle", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}

	// sin valor: cadena vacía, no error
	v, err := s.GetSetting(models.SettingSyncDSN)
	if err != nil || v != "" {
		t.Fatalf("setting inexistente = %q/%v", v, err)
	}

	if err := s.PutSetting(models.SettingSyncDSN, "postgres://nube/tostaduria"); err != nil {
		t.Fatalf("PutSetting: %v", err)
	}
	// sobrescritura por clave
	if err := s.PutSetting(models.SettingSyncDSN, "postgres://nube2/tostaduria"); err != nil {
		t.Fatalf("PutSetting: %v", err)
	}
	v, err = s.GetSetting(models.SettingSyncDSN)
	if err != nil || v != "postgres://nube2/tostaduria" {
		t.Errorf("setting = %q/%v", v, err)
	}
}

func TestCollectionByTable(t *testing.T) {
	if _, ok := CollectionByTable("orders"); !ok {
		t.Error("orders debería ser una colección conocida")
	}
	if _, ok := CollectionByTable("settings"); ok {
		t.Error("settings es local del dispositivo, no debe sincronizarse")
	}
}
