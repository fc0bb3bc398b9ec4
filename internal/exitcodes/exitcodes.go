package exitcodes

// Exit codes for ds_clean and ds_cleand
// These codes form the operational contract with scripts and operators
const (
	Success       = 0 // Successful execution, including usage/help output
	Failure       = 1 // ds_clean: directory could not be opened or closed, or path too long
	InvalidConfig = 2 // ds_cleand: configuration file invalid or missing
	RuntimeError  = 4 // ds_cleand: runtime error during a sweep
)
