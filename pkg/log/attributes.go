// Package log defines standard attribute keys for GLM operations.
//
// Keys follow a hierarchical naming convention (e.g. "glm.family",
// "data.samples") so records from fitting, prediction and cross-validation
// can be filtered uniformly.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type, e.g. "ElasticNetCV".
	ModelNameKey = "model.name"

	// EstimatorIDKey is a unique identifier for one estimator instance.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "loss", "cross_validate"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey indicates the number of observations (rows).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of predictors (columns).
	FeaturesKey = "data.features"
)

// GLM and solver
const (
	// FamilyKey is the response family: "normal", "binomial", "poisson".
	FamilyKey = "glm.family"

	// AlphaKey is the elastic-net mixing parameter.
	AlphaKey = "glm.alpha"

	// LambdaCountKey is the number of solutions on a path.
	LambdaCountKey = "glm.lambda_count"

	// LambdaKey is a single penalty strength.
	LambdaKey = "glm.lambda"

	// DevRatioKey is the fraction of null deviance explained.
	DevRatioKey = "glm.dev_ratio"

	// SolverCodeKey is the raw status code returned by the solver.
	SolverCodeKey = "solver.code"

	// SolverPassesKey is the total number of coordinate-descent passes.
	SolverPassesKey = "solver.passes"
)

// Cross-validation
const (
	// FoldKey is the 1-based fold id.
	FoldKey = "cv.fold"

	// NFoldsKey is the number of folds.
	NFoldsKey = "cv.nfolds"

	// ParallelKey reports whether folds run concurrently.
	ParallelKey = "cv.parallel"

	// LossKey records a loss value.
	LossKey = "metrics.loss"
)

// Performance and errors
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"
)

// Standard attribute values.
const (
	OperationFit           = "fit"
	OperationPredict       = "predict"
	OperationLoss          = "loss"
	OperationCrossValidate = "cross_validate"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseInference  = "inference"

	ErrorConvergence = "CONVERGENCE_FAILURE"
	ErrorActiveSet   = "ACTIVE_SET_OVERFLOW"
	ErrorSolverFatal = "SOLVER_FATAL"
)
