package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	haccpdomain "github.com/smallbiznis/haccp/internal/haccpplan/domain"
	labtestdomain "github.com/smallbiznis/haccp/internal/labtest/domain"
	wastedomain "github.com/smallbiznis/haccp/internal/waste/domain"
	"gorm.io/gorm"
)

// Default control points of the plant. CCP-1 is the thermal step the
// production module links non-compliant batches to.
var defaultCCPs = []haccpdomain.CCP{
	{
		Code:                "CCP-1",
		Name:                "Obróbka termiczna",
		ProcessStep:         "Parzenie / pieczenie",
		Hazard:              "Przeżycie bakterii chorobotwórczych (Salmonella, Listeria monocytogenes)",
		CriticalLimit:       "Temperatura w centrum geometrycznym produktu >= 72 °C",
		Monitoring:          ptr("Pomiar termometrem szpilkowym każdej partii"),
		CorrectiveProcedure: ptr("Kontynuacja obróbki do osiągnięcia limitu, blokada partii"),
		Verification:        ptr("Kalibracja termometrów raz na kwartał"),
	},
	{
		Code:                "CCP-2",
		Name:                "Schładzanie",
		ProcessStep:         "Schładzanie po obróbce termicznej",
		Hazard:              "Namnażanie przetrwalników Clostridium perfringens",
		CriticalLimit:       "Schłodzenie do <= 4 °C w ciągu 6 godzin",
		Monitoring:          ptr("Pomiar temperatury produktu po schłodzeniu"),
		CorrectiveProcedure: ptr("Ocena partii przez kierownika, utylizacja przy przekroczeniu czasu"),
	},
}

var defaultWasteTypes = []wastedomain.WasteType{
	{Code: "02-02-02", Name: "Odpady tkanek zwierzęcych", Category: ptr("Kategoria 3")},
	{Code: "02-02-03", Name: "Surowce i produkty nienadające się do spożycia", Category: ptr("Kategoria 3")},
	{Code: "15-01-01", Name: "Opakowania z papieru i tektury"},
	{Code: "15-01-02", Name: "Opakowania z tworzyw sztucznych"},
}

var defaultLabTestTypes = []labtestdomain.LabTestType{
	{Name: "Azotyny (NaNO2)", Category: ptr("Chemiczne"), Unit: ptr("mg/kg"), MaxValue: ptr(150.0)},
	{Name: "Listeria monocytogenes", Category: ptr("Mikrobiologiczne"), Unit: ptr("jtk/g"), MaxValue: ptr(100.0)},
	{Name: "Salmonella spp.", Category: ptr("Mikrobiologiczne")},
	{Name: "Zawartość soli", Category: ptr("Chemiczne"), Unit: ptr("%"), MinValue: ptr(1.5), MaxValue: ptr(3.0)},
}

// EnsureReferenceData inserts the default CCPs, waste types and lab test
// types that are missing. Existing rows are never modified. It returns the
// number of inserted records.
func EnsureReferenceData(ctx context.Context, db *gorm.DB) (int, error) {
	if db == nil {
		return 0, errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return 0, err
	}

	created := 0
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		for _, item := range defaultCCPs {
			ok, err := missing(tx, &haccpdomain.CCP{}, "code = ?", item.Code)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			item.ID, item.Active, item.CreatedAt, item.UpdatedAt = node.Generate(), true, now, now
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			created++
		}

		for _, item := range defaultWasteTypes {
			ok, err := missing(tx, &wastedomain.WasteType{}, "code = ?", item.Code)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			item.ID, item.CreatedAt, item.UpdatedAt = node.Generate(), now, now
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			created++
		}

		for _, item := range defaultLabTestTypes {
			ok, err := missing(tx, &labtestdomain.LabTestType{}, "name = ?", item.Name)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			item.ID, item.Active, item.CreatedAt, item.UpdatedAt = node.Generate(), true, now, now
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

func missing(tx *gorm.DB, model any, query string, args ...any) (bool, error) {
	var count int64
	if err := tx.Model(model).Where(query, args...).Count(&count).Error; err != nil {
		return false, err
	}
	return count == 0, nil
}

func ptr[T any](v T) *T { return &v }
