package consts

// Aliases used to mark the intent of package-level string constants.
type (
	Str             = string
	EnvKey          = string
	ConstValue      = string
	DefaultValue    = string
	DefaultEnvValue = string
)
