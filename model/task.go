package model

// Names of the analysis tasks a backend is expected to provide.
const (
	TaskTraceFunc         = "trace_func"
	TaskGetArgFuncs       = "get_arg_funcs"
	TaskGetFuncs          = "get_funcs"
	TaskGetSingleCluster  = "get_single_cluster"
	TaskGetSparseFileData = "get_sparse_file_data"
	TaskTrimFuncs         = "trim_funcs"
)
