package workflow

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("pos_ledger/workflow")
