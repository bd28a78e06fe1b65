// Reference target schema of the prediction application's measurement table.
//
// The field list mirrors the downstream table column-for-column (132 fields in
// the reference deployment). Field order is load-bearing: positional fallback
// during reconciliation assumes source deliveries keep this prefix stable and
// only append new columns after it.

package schema

// Reference returns the 132-field target schema used by the reference
// deployment. The returned value is freshly built on each call so callers can
// treat it as immutable shared configuration.
func Reference() *Target {
	t, err := New(referenceFields())
	if err != nil {
		// The literal below is validated by tests; a failure here is a
		// programming error, not a runtime condition.
		panic(err)
	}
	return t
}

func referenceFields() []FieldSpec {
	return []FieldSpec{
		{Name: "feature_name"},
		{Name: "Title"},
		{Name: "Author", Nullable: true},
		{Name: "SCI", Nullable: true},
		{Name: "Journal_or_Conference_name", Nullable: true},
		{Name: "Year", Type: TypeYear, Nullable: true},
		{Name: "No_field", Nullable: true},
		{Name: "no_field_secondary", Nullable: true},
		{Name: "Fiber_type", Nullable: true},
		{Name: "Fiber_type_detail", Nullable: true},
		{Name: "Matrix_type", Nullable: true},
		{Name: "Matrix_type_detail", Nullable: true},
		{Name: "glass_transition_temperature", Type: TypeNumeric, Nullable: true},
		{Name: "glass_transition_temperature_run_2", Type: TypeNumeric, Nullable: true},
		{Name: "cure_ratio", Type: TypeNumeric, Nullable: true},
		{Name: "Fiber_content_weight", Type: TypeNumeric, Nullable: true},
		{Name: "Fiber_content_volume", Type: TypeNumeric, Nullable: true},
		{Name: "Void_content", Type: TypeNumeric, Nullable: true},
		{Name: "diameter", Type: TypeNumeric, Nullable: true},
		{Name: "average_area", Type: TypeNumeric, Nullable: true},
		{Name: "nominal_area", Type: TypeNumeric, Nullable: true},
		{Name: "rib", Nullable: true},
		{Name: "surface_treatment", Nullable: true},
		{Name: "Water_absorption_at_saturation", Type: TypeNumeric, Nullable: true},
		{Name: "Water_absorption_test_standard", Nullable: true},
		{Name: "Water_absorption_note", Nullable: true},
		{Name: "Brand_name", Nullable: true},
		{Name: "Manufacturer", Nullable: true},
		{Name: "Important_notes", Nullable: true},
		{Name: "Notes_of_rebar", Nullable: true},
		{Name: "Target_parameter", Nullable: true},
		{Name: "note_of_target_parameter", Nullable: true},
		{Name: "num_1", Type: TypeNumeric, Nullable: true},
		{Name: "note_of_number", Nullable: true},
		{Name: "Value1_1", Type: TypeNumeric, Nullable: true},
		{Name: "COV1_1", Type: TypeNumeric, Nullable: true},
		{Name: "note_of_Value1", Nullable: true},
		{Name: "Value2_1", Type: TypeNumeric, Nullable: true},
		{Name: "COV2_1", Type: TypeNumeric, Nullable: true},
		{Name: "Value2note_1", Nullable: true},
		{Name: "Value3_1", Type: TypeNumeric, Nullable: true},
		{Name: "COV3_1", Type: TypeNumeric, Nullable: true},
		{Name: "Value3note_1", Nullable: true},
		{Name: "SEM_T_BCBT", Nullable: true},
		{Name: "SEM_L_BCBT", Nullable: true},
		{Name: "OTHER_main", Nullable: true},
		{Name: "OTHER1_1", Nullable: true},
		{Name: "FTIR_1", Nullable: true},
		{Name: "note_1", Nullable: true},
		{Name: "temperature", Type: TypeNumeric, Nullable: true},
		{Name: "note_of_temperature", Nullable: true},
		{Name: "time_field", Type: TypeNumeric, Nullable: true},
		{Name: "note_of_time", Nullable: true},
		{Name: "concrete", Nullable: true},
		{Name: "pH_of_concrete", Type: TypeNumeric, Nullable: true},
		{Name: "strength_of_concrete", Type: TypeNumeric, Nullable: true},
		{Name: "crack", Nullable: true},
		{Name: "cover", Type: TypeNumeric, Nullable: true},
		{Name: "note_of_concrete", Nullable: true},
		{Name: "pH_1", Type: TypeNumeric, Nullable: true},
		{Name: "pHafter", Type: TypeNumeric, Nullable: true},
		{Name: "ingredient_1", Nullable: true},
		{Name: "pH_2", Type: TypeNumeric, Nullable: true},
		{Name: "RH_1", Type: TypeNumeric, Nullable: true},
		{Name: "ingredient_2", Nullable: true},
		{Name: "note_2", Nullable: true},
		{Name: "Location", Nullable: true},
		{Name: "Effektive_Klimaklassifikation", Nullable: true},
		{Name: "field_average_humidity", Type: TypeNumeric, Nullable: true},
		{Name: "field_average_temperature", Type: TypeNumeric, Nullable: true},
		{Name: "number_field", Nullable: true},
		{Name: "type_field", Nullable: true},
		{Name: "SolutionorMoisture", Nullable: true},
		{Name: "cycle_pH", Type: TypeNumeric, Nullable: true},
		{Name: "cycle_pH_after", Type: TypeNumeric, Nullable: true},
		{Name: "cycle_ingredient", Nullable: true},
		{Name: "temp", Type: TypeNumeric, Nullable: true},
		{Name: "temp2", Type: TypeNumeric, Nullable: true},
		{Name: "RH_2", Type: TypeNumeric, Nullable: true},
		{Name: "RH2", Type: TypeNumeric, Nullable: true},
		{Name: "OTHER1_2", Nullable: true},
		{Name: "OTHER2_main", Nullable: true},
		{Name: "time_in_cycle", Type: TypeNumeric, Nullable: true},
		{Name: "note_3", Nullable: true},
		{Name: "UV", Nullable: true},
		{Name: "note_4", Nullable: true},
		{Name: "stress_or_strain", Nullable: true},
		{Name: "type_of_load", Nullable: true},
		{Name: "value_load", Type: TypeNumeric, Nullable: true},
		{Name: "ultimate_tensile_strength", Type: TypeNumeric, Nullable: true},
		{Name: "tensile_modulus", Type: TypeNumeric, Nullable: true},
		{Name: "note_5", Nullable: true},
		{Name: "after_condition", Nullable: true},
		{Name: "note_6", Nullable: true},
		{Name: "num_2", Type: TypeNumeric, Nullable: true},
		{Name: "Value1_2", Type: TypeNumeric, Nullable: true},
		{Name: "COV1_2", Type: TypeNumeric, Nullable: true},
		{Name: "Value1note", Nullable: true},
		{Name: "retention1", Type: TypeNumeric, Nullable: true},
		{Name: "Value2_2", Type: TypeNumeric, Nullable: true},
		{Name: "COV2_2", Type: TypeNumeric, Nullable: true},
		{Name: "Value2note_2", Nullable: true},
		{Name: "retention2", Type: TypeNumeric, Nullable: true},
		{Name: "Value3_2", Type: TypeNumeric, Nullable: true},
		{Name: "COV3_2", Type: TypeNumeric, Nullable: true},
		{Name: "Value3note_2", Nullable: true},
		{Name: "retention3", Type: TypeNumeric, Nullable: true},
		{Name: "num_3", Type: TypeNumeric, Nullable: true},
		{Name: "water_absorption_ratio", Type: TypeNumeric, Nullable: true},
		{Name: "COV_1", Type: TypeNumeric, Nullable: true},
		{Name: "note_7", Nullable: true},
		{Name: "num_4", Type: TypeNumeric, Nullable: true},
		{Name: "glass_transition_temperature_2", Type: TypeNumeric, Nullable: true},
		{Name: "run2", Type: TypeNumeric, Nullable: true},
		{Name: "COV_2", Type: TypeNumeric, Nullable: true},
		{Name: "cure_ratio_2", Type: TypeNumeric, Nullable: true},
		{Name: "note_8", Nullable: true},
		{Name: "num_5", Type: TypeNumeric, Nullable: true},
		{Name: "OTHERS", Nullable: true},
		{Name: "OTHERS_note", Nullable: true},
		{Name: "SEM_T_BCAT", Nullable: true},
		{Name: "SEM_L_BCAT", Nullable: true},
		{Name: "SEM_T_ACBT", Nullable: true},
		{Name: "SEM_L_ACBT", Nullable: true},
		{Name: "SEM_T_ACAT", Nullable: true},
		{Name: "SEM_L_ACAT", Nullable: true},
		{Name: "other_lower", Nullable: true},
		{Name: "other2_final", Nullable: true},
		{Name: "note_9", Nullable: true},
		{Name: "FTIR_2", Nullable: true},
		{Name: "note_10", Nullable: true},
		{Name: "important_note", Nullable: true},
	}
}
