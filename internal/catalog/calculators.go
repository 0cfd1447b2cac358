package catalog

import (
	"fmt"

	"github.com/iwvelando/build-estimator/pkg/constants"
	"github.com/iwvelando/build-estimator/pkg/datetime"
	"github.com/iwvelando/build-estimator/pkg/financing"
	"github.com/iwvelando/build-estimator/pkg/format"
	"github.com/iwvelando/build-estimator/pkg/formulas"
	"github.com/iwvelando/build-estimator/pkg/numeric"
	"github.com/iwvelando/build-estimator/pkg/schedule"
	"github.com/iwvelando/build-estimator/pkg/tier"
	"github.com/iwvelando/build-estimator/pkg/validation"
)

// Budget categories
const (
	CategoryPainting   = "painting"
	CategoryFlooring   = "flooring"
	CategoryStructure  = "structure"
	CategoryMasonry    = "masonry"
	CategoryClimate    = "climate"
	CategoryPlumbing   = "plumbing"
	CategoryElectrical = "electrical"
	CategorySecurity   = "security"
	CategoryEnergy     = "energy"
	CategoryMetalwork  = "metalwork"
	CategoryEvents     = "events"
	CategoryPlanning   = "planning"
	CategoryFinance    = "finance"
)

// DefaultPrices are illustrative unit prices in R$. They are rough estimates
// and are expected to be overridden through configuration.
var DefaultPrices = map[string]float64{
	"paint_can_18l":        350,
	"paint_gallon_3_6l":    95,
	"tile_m2":              60,
	"tile_mortar_bag_20kg": 25,
	"cement_bag_50kg":      38,
	"sand_m3":              130,
	"gravel_m3":            140,
	"block_unit":           3.5,
	"ac_per_kbtu":          180,
	"water_tank_liter":     0.9,
	"wire_meter_per_mm2":   0.9,
	"breaker_unit":         25,
	"dvr_channel":          60,
	"hdd_tb":               350,
	"camera_unit":          180,
	"solar_wp":             3.2,
	"steel_kg":             9.5,
	"meat_kg":              55,
	"charcoal_bag_5kg":     30,
	"beer_can":             4,
	"soda_2l":              9,
}

// FinancingResult is the outcome of the financing calculator.
type FinancingResult struct {
	Summary financing.Result
	Table   []financing.Installment
}

func registry() []entry {
	return []entry{
		{
			Calculator: Calculator{
				Name:     "paint",
				Title:    "Wall paint",
				Category: CategoryPainting,
				Fields: []Field{
					{Key: "wallLength", Label: "Total wall length", Unit: "m", Required: true},
					{Key: "wallHeight", Label: "Wall height", Unit: "m", Required: true},
					{Key: "openingsArea", Label: "Doors and windows", Unit: "m²", Default: "0"},
					{Key: "coats", Label: "Coats", Default: "2"},
				},
			},
			run: runPaint,
		},
		{
			Calculator: Calculator{
				Name:     "flooring",
				Title:    "Floor tiles",
				Category: CategoryFlooring,
				Fields: []Field{
					{Key: "roomLength", Label: "Room length", Unit: "m", Required: true},
					{Key: "roomWidth", Label: "Room width", Unit: "m", Required: true},
					{Key: "furnitureArea", Label: "Area under fixed furniture", Unit: "m²", Default: "0"},
					{Key: "tileLength", Label: "Tile length", Unit: "cm", Default: "60"},
					{Key: "tileWidth", Label: "Tile width", Unit: "cm", Default: "60"},
					{Key: "wastePercent", Label: "Waste", Unit: "%", Default: "10"},
					{Key: "boxArea", Label: "Area per box", Unit: "m²", Default: "2.5"},
				},
			},
			run: runFlooring,
		},
		{
			Calculator: Calculator{
				Name:     "concrete",
				Title:    "Concrete slab",
				Category: CategoryStructure,
				Fields: []Field{
					{Key: "length", Label: "Length", Unit: "m", Required: true},
					{Key: "width", Label: "Width", Unit: "m", Required: true},
					{Key: "thicknessCm", Label: "Thickness", Unit: "cm", Required: true},
					{Key: "wastePercent", Label: "Waste", Unit: "%", Default: "5"},
				},
			},
			run: runConcrete,
		},
		{
			Calculator: Calculator{
				Name:     "masonry",
				Title:    "Block wall",
				Category: CategoryMasonry,
				Fields: []Field{
					{Key: "wallLength", Label: "Wall length", Unit: "m", Required: true},
					{Key: "wallHeight", Label: "Wall height", Unit: "m", Required: true},
					{Key: "openingsArea", Label: "Doors and windows", Unit: "m²", Default: "0"},
					{Key: "blockLength", Label: "Block length", Unit: "cm", Default: "39"},
					{Key: "blockHeight", Label: "Block height", Unit: "cm", Default: "19"},
					{Key: "jointCm", Label: "Mortar joint", Unit: "cm", Default: "1"},
					{Key: "wastePercent", Label: "Waste", Unit: "%", Default: "5"},
				},
			},
			run: runMasonry,
		},
		{
			Calculator: Calculator{
				Name:     "cooling",
				Title:    "Air conditioner",
				Category: CategoryClimate,
				Fields: []Field{
					{Key: "area", Label: "Room area", Unit: "m²", Required: true},
					{Key: "people", Label: "People", Default: "1"},
					{Key: "electronics", Label: "Electronic devices", Default: "0"},
					{Key: "afternoonSun", Label: "Afternoon sun", Default: "no"},
				},
			},
			run: runCooling,
		},
		{
			Calculator: Calculator{
				Name:     "water_tank",
				Title:    "Water tank",
				Category: CategoryPlumbing,
				Fields: []Field{
					{Key: "residents", Label: "Residents", Required: true},
					{Key: "litersPerPerson", Label: "Daily consumption per person", Unit: "L", Default: "150"},
					{Key: "reserveDays", Label: "Reserve", Unit: "days", Default: "2"},
				},
			},
			run: runWaterTank,
		},
		{
			Calculator: Calculator{
				Name:     "circuit",
				Title:    "Electrical circuit",
				Category: CategoryElectrical,
				Fields: []Field{
					{Key: "powerWatts", Label: "Load", Unit: "W", Required: true},
					{Key: "voltage", Label: "Voltage", Unit: "V", Default: "220"},
					{Key: "lengthMeters", Label: "Circuit length", Unit: "m", Default: "0"},
					{Key: "powerFactor", Label: "Power factor", Default: "1"},
				},
			},
			run: runCircuit,
		},
		{
			Calculator: Calculator{
				Name:     "cctv",
				Title:    "Security cameras",
				Category: CategorySecurity,
				Fields: []Field{
					{Key: "cameras", Label: "Cameras", Required: true},
					{Key: "resolutionMP", Label: "Resolution", Unit: "MP", Default: "2"},
					{Key: "retentionDays", Label: "Retention", Unit: "days", Default: "30"},
					{Key: "hoursPerDay", Label: "Recording per day", Unit: "h", Default: "24"},
				},
			},
			run: runCCTV,
		},
		{
			Calculator: Calculator{
				Name:     "solar",
				Title:    "Solar power",
				Category: CategoryEnergy,
				Fields: []Field{
					{Key: "monthlyKWh", Label: "Monthly consumption", Unit: "kWh", Required: true},
					{Key: "region", Label: "Region", Default: "southeast"},
					{Key: "panelWatts", Label: "Panel power", Unit: "Wp", Default: "550"},
				},
			},
			run: runSolar,
		},
		{
			Calculator: Calculator{
				Name:     "steel_tube",
				Title:    "Steel tube",
				Category: CategoryMetalwork,
				Fields: []Field{
					{Key: "widthMM", Label: "Width", Unit: "mm", Required: true},
					{Key: "heightMM", Label: "Height", Unit: "mm", Required: true},
					{Key: "wallMM", Label: "Wall thickness", Unit: "mm", Required: true},
					{Key: "lengthM", Label: "Length per piece", Unit: "m", Required: true},
					{Key: "pieces", Label: "Pieces", Default: "1"},
				},
			},
			run: runSteelTube,
		},
		{
			Calculator: Calculator{
				Name:     "barbecue",
				Title:    "Barbecue",
				Category: CategoryEvents,
				Fields: []Field{
					{Key: "men", Label: "Men", Default: "0"},
					{Key: "women", Label: "Women", Default: "0"},
					{Key: "children", Label: "Children", Default: "0"},
					{Key: "durationHours", Label: "Duration", Unit: "h", Default: "4"},
				},
			},
			run: runBarbecue,
		},
		{
			Calculator: Calculator{
				Name:     "schedule",
				Title:    "Construction schedule",
				Category: CategoryPlanning,
				Fields: []Field{
					{Key: "projectType", Label: "Project type", Default: string(schedule.NewConstruction)},
					{Key: "area", Label: "Built area", Unit: "m²", Required: true},
					{Key: "startDate", Label: "Start date", Unit: datetime.DateLayout, Required: true},
				},
			},
			run: runSchedule,
		},
		{
			Calculator: Calculator{
				Name:     "financing",
				Title:    "Financing",
				Category: CategoryFinance,
				Fields: []Field{
					{Key: "totalValue", Label: "Total value", Unit: "R$", Required: true},
					{Key: "downPayment", Label: "Down payment", Unit: "R$", Default: "0"},
					{Key: "installments", Label: "Installments", Required: true},
					{Key: "monthlyRate", Label: "Monthly rate (blank for the configured rate)"},
				},
			},
			run: runFinancing,
		},
	}
}

func runPaint(c *Catalog, in fieldReader) (Outcome, error) {
	// A blank field already reads as the default, so zero was typed.
	coats := in.number("coats")
	if coats == 0 {
		return Outcome{}, validation.Invalid("coats", "at least one coat is required")
	}
	r, err := formulas.Paint(formulas.PaintInput{
		WallLength:   in.number("wallLength"),
		WallHeight:   in.number("wallHeight"),
		OpeningsArea: in.number("openingsArea"),
		Coats:        coats,
	})
	if err != nil {
		return Outcome{}, err
	}

	description := fmt.Sprintf("%d coats over %s", r.Coats, format.Quantity(r.NetArea, 2, "m²"))
	d := c.newDrafts(CategoryPainting)
	d.add("Paint can 18 L", description, float64(r.Cans), "can", "paint_can_18l")
	d.add("Paint gallon 3.6 L", description, float64(r.Gallons), "gallon", "paint_gallon_3_6l")

	return Outcome{
		Result: r,
		Lines: []Line{
			{"Gross wall area", format.Quantity(r.GrossArea, 2, "m²")},
			{"Area to paint", format.Quantity(r.NetArea, 2, "m²")},
			{"Coats", format.Integer(r.Coats)},
			{"Paint required", format.Quantity(r.Liters, 2, "L")},
			{"18 L cans", format.Integer(r.Cans)},
			{"3.6 L gallons", format.Integer(r.Gallons)},
		},
		Items: d.items,
	}, nil
}

func runFlooring(c *Catalog, in fieldReader) (Outcome, error) {
	r, err := formulas.Flooring(formulas.FlooringInput{
		RoomLength:    in.number("roomLength"),
		RoomWidth:     in.number("roomWidth"),
		FurnitureArea: in.number("furnitureArea"),
		TileLength:    in.number("tileLength"),
		TileWidth:     in.number("tileWidth"),
		WastePercent:  in.number("wastePercent"),
		BoxArea:       in.number("boxArea"),
	})
	if err != nil {
		return Outcome{}, err
	}

	d := c.newDrafts(CategoryFlooring)
	d.add("Floor tiles", fmt.Sprintf("%d boxes, %d tiles", r.Boxes, r.Tiles), r.AreaWithWaste, "m²", "tile_m2")
	d.add("Tile adhesive mortar 20 kg", "", float64(r.MortarBags), "bag", "tile_mortar_bag_20kg")

	return Outcome{
		Result: r,
		Lines: []Line{
			{"Floor area", format.Quantity(r.GrossArea, 2, "m²")},
			{"Area to cover", format.Quantity(r.NetArea, 2, "m²")},
			{"Area with waste", format.Quantity(r.AreaWithWaste, 2, "m²")},
			{"Tiles", format.Integer(r.Tiles)},
			{"Boxes", format.Integer(r.Boxes)},
			{"Mortar bags (20 kg)", format.Integer(r.MortarBags)},
		},
		Items: d.items,
	}, nil
}

func runConcrete(c *Catalog, in fieldReader) (Outcome, error) {
	r, err := formulas.Concrete(formulas.ConcreteInput{
		Length:       in.number("length"),
		Width:        in.number("width"),
		ThicknessCm:  in.number("thicknessCm"),
		WastePercent: in.number("wastePercent"),
	})
	if err != nil {
		return Outcome{}, err
	}

	d := c.newDrafts(CategoryStructure)
	d.add("Cement 50 kg", "", float64(r.CementBags), "bag", "cement_bag_50kg")
	d.add("Sand", "", r.SandM3, "m³", "sand_m3")
	d.add("Gravel", "", r.GravelM3, "m³", "gravel_m3")

	return Outcome{
		Result: r,
		Lines: []Line{
			{"Concrete volume", format.Quantity(r.Volume, 3, "m³")},
			{"Volume with waste", format.Quantity(r.VolumeWithWaste, 3, "m³")},
			{"Cement bags (50 kg)", format.Integer(r.CementBags)},
			{"Sand", format.Quantity(r.SandM3, 2, "m³")},
			{"Gravel", format.Quantity(r.GravelM3, 2, "m³")},
			{"Water", format.Quantity(r.WaterLiters, 1, "L")},
		},
		Items: d.items,
	}, nil
}

func runMasonry(c *Catalog, in fieldReader) (Outcome, error) {
	r, err := formulas.Masonry(formulas.MasonryInput{
		WallLength:   in.number("wallLength"),
		WallHeight:   in.number("wallHeight"),
		OpeningsArea: in.number("openingsArea"),
		BlockLength:  in.number("blockLength"),
		BlockHeight:  in.number("blockHeight"),
		JointCm:      in.number("jointCm"),
		WastePercent: in.number("wastePercent"),
	})
	if err != nil {
		return Outcome{}, err
	}

	d := c.newDrafts(CategoryMasonry)
	d.add("Concrete blocks", "", float64(r.Blocks), "unit", "block_unit")
	d.add("Cement 50 kg (mortar)", "", float64(r.MortarCementBags), "bag", "cement_bag_50kg")

	return Outcome{
		Result: r,
		Lines: []Line{
			{"Wall area", format.Quantity(r.NetArea, 2, "m²")},
			{"Blocks per m²", format.Quantity(r.BlocksPerM2, 2, "")},
			{"Blocks", format.Integer(r.Blocks)},
			{"Laying mortar", format.Quantity(r.MortarM3, 3, "m³")},
			{"Mortar cement bags (50 kg)", format.Integer(r.MortarCementBags)},
		},
		Items: d.items,
	}, nil
}

func runCooling(c *Catalog, in fieldReader) (Outcome, error) {
	r, err := formulas.Cooling(formulas.CoolingInput{
		Area:         in.number("area"),
		People:       in.number("people"),
		Electronics:  in.number("electronics"),
		AfternoonSun: in.flag("afternoonSun"),
	})
	if err != nil {
		return Outcome{}, err
	}

	d := c.newDrafts(CategoryClimate)
	d.addPriced("Split air conditioner "+r.Unit.Label, "", 1, "unit", r.Unit.Value/1000*c.Price("ac_per_kbtu"))

	return Outcome{
		Result: r,
		Lines: []Line{
			{"Required capacity", format.Quantity(r.RequiredBTU, 0, "BTU/h")},
			{"Recommended unit", r.Unit.Label},
		},
		Notices: selectionNotices(r.Unit),
		Items:   d.items,
	}, nil
}

func runWaterTank(c *Catalog, in fieldReader) (Outcome, error) {
	r, err := formulas.WaterTank(formulas.WaterTankInput{
		Residents:       in.number("residents"),
		LitersPerPerson: in.number("litersPerPerson"),
		ReserveDays:     in.number("reserveDays"),
	})
	if err != nil {
		return Outcome{}, err
	}

	var notices []string
	if r.Tank.Custom {
		notices = append(notices, fmt.Sprintf("No standard tank holds %s; plan a %s",
			format.Quantity(r.RequiredLiters, 0, "L"), r.Tank.Label))
	}
	d := c.newDrafts(CategoryPlumbing)
	d.addPriced("Water tank "+r.Tank.Label, "", 1, "unit", r.Tank.Value*c.Price("water_tank_liter"))

	return Outcome{
		Result: r,
		Lines: []Line{
			{"Required storage", format.Quantity(r.RequiredLiters, 0, "L")},
			{"Recommended tank", r.Tank.Label},
		},
		Notices: notices,
		Items:   d.items,
	}, nil
}

func runCircuit(c *Catalog, in fieldReader) (Outcome, error) {
	length := in.number("lengthMeters")
	r, err := formulas.Circuit(formulas.CircuitInput{
		PowerWatts:   in.number("powerWatts"),
		Voltage:      in.number("voltage"),
		LengthMeters: length,
		PowerFactor:  in.number("powerFactor"),
	})
	if err != nil {
		return Outcome{}, err
	}

	d := c.newDrafts(CategoryElectrical)
	d.add("Circuit breaker "+r.Breaker.Label, "", 1, "unit", "breaker_unit")
	if r.WireSectionMM2 > 0 && length > 0 {
		// Phase and neutral run the full length.
		meters := 2 * length
		d.addPriced("Copper wire "+r.Wire.Label, "phase and neutral", meters, "m",
			meters*r.WireSectionMM2*c.Price("wire_meter_per_mm2"))
	}

	return Outcome{
		Result: r,
		Lines: []Line{
			{"Current", format.Quantity(r.Current, 2, "A")},
			{"Breaker", r.Breaker.Label},
			{"Wire", r.Wire.Label},
			{"Voltage drop", format.Quantity(r.VoltageDropPercent, 2, "%")},
		},
		Notices: r.Warnings,
		Items:   d.items,
	}, nil
}

func runCCTV(c *Catalog, in fieldReader) (Outcome, error) {
	r, err := formulas.CCTV(formulas.CCTVInput{
		Cameras:       in.number("cameras"),
		ResolutionMP:  in.number("resolutionMP"),
		RetentionDays: in.number("retentionDays"),
		HoursPerDay:   in.number("hoursPerDay"),
	})
	if err != nil {
		return Outcome{}, err
	}

	notices := append([]string(nil), r.Warnings...)
	if r.Recorder.Custom {
		notices = append(notices, fmt.Sprintf("%d cameras exceed the largest recorder; use %s",
			r.Cameras, r.Recorder.Label))
	}
	d := c.newDrafts(CategorySecurity)
	d.add("Security camera", "", float64(r.Cameras), "unit", "camera_unit")
	d.addPriced("Recorder "+r.Recorder.Label, "", 1, "unit", r.Recorder.Value*c.Price("dvr_channel"))
	d.addPriced("Surveillance disk "+r.Disk.Label, "", 1, "unit", r.Disk.Value*c.Price("hdd_tb"))

	return Outcome{
		Result: r,
		Lines: []Line{
			{"Cameras", format.Integer(r.Cameras)},
			{"Bitrate per camera", format.Quantity(r.BitrateMbps, 0, "Mbps")},
			{"Storage required", format.Quantity(r.StorageTB, 2, "TB")},
			{"Recorder", r.Recorder.Label},
			{"Disk", r.Disk.Label},
		},
		Notices: notices,
		Items:   d.items,
	}, nil
}

func runSolar(c *Catalog, in fieldReader) (Outcome, error) {
	panelWatts := in.number("panelWatts")
	r, err := formulas.Solar(formulas.SolarInput{
		MonthlyKWh: in.number("monthlyKWh"),
		Region:     in.text("region"),
		PanelWatts: panelWatts,
	})
	if err != nil {
		return Outcome{}, err
	}

	d := c.newDrafts(CategoryEnergy)
	d.addPriced("Photovoltaic kit",
		fmt.Sprintf("%d panels of %s with a %s inverter", r.Panels, format.Quantity(panelWatts, 0, "Wp"), r.Inverter.Label),
		float64(r.Panels), "panel", float64(r.Panels)*panelWatts*c.Price("solar_wp"))

	return Outcome{
		Result: r,
		Lines: []Line{
			{"Peak sun hours", format.Quantity(r.PeakSunHours, 1, "h")},
			{"System power", format.Quantity(r.PeakKW, 2, "kWp")},
			{"Panels", format.Integer(r.Panels)},
			{"Roof area", format.Quantity(r.AreaM2, 2, "m²")},
			{"Monthly generation", format.Quantity(r.MonthlyGeneration, 1, "kWh")},
			{"Inverter", r.Inverter.Label},
		},
		Notices: selectionNotices(r.Inverter),
		Items:   d.items,
	}, nil
}

func runSteelTube(c *Catalog, in fieldReader) (Outcome, error) {
	tube := formulas.SteelTubeInput{
		WidthMM:  in.number("widthMM"),
		HeightMM: in.number("heightMM"),
		WallMM:   in.number("wallMM"),
		LengthM:  in.number("lengthM"),
		Pieces:   in.number("pieces"),
	}
	r, err := formulas.SteelTube(tube)
	if err != nil {
		return Outcome{}, err
	}

	name := fmt.Sprintf("Steel tube %gx%gx%g mm", tube.WidthMM, tube.HeightMM, tube.WallMM)
	d := c.newDrafts(CategoryMetalwork)
	d.add(name, fmt.Sprintf("%d bars of 6 m", r.Bars), r.TotalKg, "kg", "steel_kg")

	return Outcome{
		Result: r,
		Lines: []Line{
			{"Section", format.Quantity(r.SectionMM2, 2, "mm²")},
			{"Weight per meter", format.Quantity(r.KgPerMeter, 3, "kg/m")},
			{"Total length", format.Quantity(r.TotalLength, 2, "m")},
			{"Total weight", format.Quantity(r.TotalKg, 2, "kg")},
			{"6 m bars", format.Integer(r.Bars)},
		},
		Items: d.items,
	}, nil
}

func runBarbecue(c *Catalog, in fieldReader) (Outcome, error) {
	r, err := formulas.Barbecue(formulas.BarbecueInput{
		Men:           in.number("men"),
		Women:         in.number("women"),
		Children:      in.number("children"),
		DurationHours: in.number("durationHours"),
	})
	if err != nil {
		return Outcome{}, err
	}

	d := c.newDrafts(CategoryEvents)
	d.add("Meat", "", r.MeatKg, "kg", "meat_kg")
	d.add("Charcoal 5 kg", "", float64(r.CharcoalBags), "bag", "charcoal_bag_5kg")
	d.add("Beer 350 ml", "", float64(r.BeerCans), "can", "beer_can")
	d.add("Soft drink 2 L", "", float64(r.SodaBottles), "bottle", "soda_2l")

	return Outcome{
		Result: r,
		Lines: []Line{
			{"Guests", format.Integer(r.People)},
			{"Duration factor", format.Number(r.DurationMultiplier, 3)},
			{"Meat", format.Quantity(r.MeatKg, 2, "kg")},
			{"Charcoal bags (5 kg)", format.Integer(r.CharcoalBags)},
			{"Beer", format.Quantity(r.BeerLiters, 2, "L")},
			{"Beer cans (350 ml)", format.Integer(r.BeerCans)},
			{"Soft drinks", format.Quantity(r.SodaLiters, 2, "L")},
			{"Soft drink bottles (2 L)", format.Integer(r.SodaBottles)},
		},
		Items: d.items,
	}, nil
}

func runSchedule(c *Catalog, in fieldReader) (Outcome, error) {
	projectType, err := schedule.ParseProjectType(in.text("projectType"))
	if err != nil {
		return Outcome{}, err
	}
	start, err := datetime.ParseDate(in.text("startDate"))
	if err != nil {
		return Outcome{}, validation.Invalid("startDate", "%v", err)
	}
	r, err := schedule.NewSynthesizer(c.logger).Synthesize(projectType, in.number("area"), start)
	if err != nil {
		return Outcome{}, err
	}

	lines := make([]Line, 0, len(r.Phases)+2)
	for _, phase := range r.Phases {
		lines = append(lines, Line{
			Label: phase.Name,
			Value: fmt.Sprintf("%s (%s to %s)", weeks(phase.DurationWeeks),
				datetime.FormatDate(phase.StartDate), datetime.FormatDate(phase.EndDate)),
		})
	}
	lines = append(lines,
		Line{"Total duration", weeks(r.TotalDurationWeeks)},
		Line{"Completion", datetime.FormatDate(r.EndDate())},
	)

	return Outcome{Result: r, Lines: lines}, nil
}

func runFinancing(c *Catalog, in fieldReader) (Outcome, error) {
	installments := in.number("installments")
	if err := validation.First(
		validation.WholeNumber("installments", installments),
		validation.AtMost("installments", installments, constants.MaxInstallments),
	); err != nil {
		return Outcome{}, err
	}
	rate := numeric.NormalizeOr(in.text("monthlyRate"), c.monthlyRate)

	summary, err := financing.Amortize(in.number("totalValue"), in.number("downPayment"), int(installments), rate)
	if err != nil {
		return Outcome{}, err
	}
	table, err := financing.NewTableGenerator(c.logger).Generate(summary)
	if err != nil {
		return Outcome{}, err
	}

	return Outcome{
		Result: FinancingResult{Summary: summary, Table: table},
		Lines: []Line{
			{"Financed amount", format.Currency(summary.Principal)},
			{"Installment", fmt.Sprintf("%d x %s", summary.Installments, format.Currency(summary.Installment))},
			{"Monthly rate", format.Quantity(summary.RateUsed*100, 2, "%")},
			{"Total interest", format.Currency(summary.TotalInterest)},
			{"Total paid", format.Currency(summary.TotalPaid)},
		},
	}, nil
}

func selectionNotices(sel tier.Selection) []string {
	if sel.Warning == "" {
		return nil
	}
	return []string{fmt.Sprintf("%s: %s", sel.Label, sel.Warning)}
}

func weeks(n int) string {
	if n == 1 {
		return "1 week"
	}
	return fmt.Sprintf("%d weeks", n)
}
