package catalog

import (
	"github.com/m04kA/SMC-CarWashBooking/pkg/dbmetrics"
)

type DBExecutor = dbmetrics.DBExecutor
