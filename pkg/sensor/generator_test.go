package sensor

import "testing"

func TestDataGenerator_ValuesStayWithinBounds(t *testing.T) {
	g := NewDataGenerator(42)

	dataSet := g.GenerateDailyDataSet(CurveSine, LowNormalIndoorTemp, HiNormalIndoorTemp, 10)
	if len(dataSet) != EntriesPerDay {
		t.Fatalf("Expected %d entries, got %d", EntriesPerDay, len(dataSet))
	}

	for i, v := range dataSet {
		if v < LowNormalIndoorTemp || v > HiNormalIndoorTemp {
			t.Fatalf("Entry %d value %.3f outside [%.1f, %.1f]", i, v, LowNormalIndoorTemp, HiNormalIndoorTemp)
		}
	}
}

func TestDataGenerator_Reproducible(t *testing.T) {
	a := NewDataGenerator(42).GenerateCO2DataSet(LowNormalCO2, HiNormalCO2)
	b := NewDataGenerator(42).GenerateCO2DataSet(LowNormalCO2, HiNormalCO2)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("Same seed produced different datasets at entry %d: %.3f != %.3f", i, a[i], b[i])
		}
	}
}

func TestDataGenerator_SwappedBounds(t *testing.T) {
	g := NewDataGenerator(1)

	dataSet := g.GenerateDailyDataSet(CurveBell, 60, 30, 0)
	for i, v := range dataSet {
		if v < 30 || v > 60 {
			t.Fatalf("Entry %d value %.3f outside normalized [30, 60]", i, v)
		}
	}
}
