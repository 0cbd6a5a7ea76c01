// Package domain models groundwater depth prediction for the Nashik district
// service area.
//
// # Data Sources
//
// Reference locations are the geographic anchor points of the regression
// model's training data. A query point is serviceable ("in zone") when it
// lies within a fixed radius (20 km by default) of any reference location.
// An empty reference set disables geofencing entirely rather than rejecting
// every request.
//
// Borewell records come from the CGWB (Central Ground Water Board) well
// inventory for the district: one row per drilled well with its measured
// depth in meters, yield in liters/hour, construction year, water quality
// class, and a Success/Failure status. Both collections are loaded once at
// startup and are read-only for the process lifetime.
//
// # Feature Order
//
// The regression model consumes an eleven-value vector in a fixed positional
// order (see [FeatureOrder]): latitude, longitude, rainfall, river water
// level, temperature, year, month, day, hour, rainfall one step back, river
// level one step back. The order is part of the model contract; a permuted
// vector produces silently wrong predictions. [ValidateFeatureSchema]
// compares the model's published schema against [FeatureOrder] at startup so
// a mismatch fails configuration instead of corrupting results.
//
// # Post-Prediction Adjustments
//
// A raw model estimate passes through two local adjustments before it is
// returned:
//
//   - Offset correction: successful borewells near the query point pull the
//     estimate toward their inverse-distance-weighted mean depth, with the
//     correction magnitude capped and tapered to zero at the search radius
//     so the corrected value is continuous in the input coordinate.
//     See [OffsetCorrector].
//   - Confidence scoring: a weighted blend of location proximity, input
//     plausibility, a fixed model-confidence heuristic, and completeness,
//     clamped to [50, 98] so the service never reports total certainty nor
//     a useless score. See [EstimateConfidence].
//
// # Depth Categories
//
// Predicted depths are bucketed into three fixed bands for map rendering:
// below 35 m is shallow ("low"), 35-55 m is moderate ("medium"), 55 m and
// above is deep ("high"). See [CategorizeDepth].
package domain
