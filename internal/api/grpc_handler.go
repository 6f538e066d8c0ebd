package api

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"medicine-inventory-service/internal/domain"
	"medicine-inventory-service/internal/logger"
	"medicine-inventory-service/internal/query"
	"medicine-inventory-service/internal/store"
)

// GRPCHandler implements InventoryServiceServer on top of the record store.
type GRPCHandler struct {
	categoryStore store.CategoryStorer
	medicineStore store.MedicineStorer
	log           *logger.Logger
	limits        Limits
	now           func() time.Time
}

var _ InventoryServiceServer = (*GRPCHandler)(nil)

// NewGRPCHandler creates a new GRPCHandler.
func NewGRPCHandler(cs store.CategoryStorer, ms store.MedicineStorer, log *logger.Logger, limits Limits) *GRPCHandler {
	return &GRPCHandler{
		categoryStore: cs,
		medicineStore: ms,
		log:           log,
		limits:        limits,
		now:           time.Now,
	}
}

// --- Helper: Error Mapping ---
func (h *GRPCHandler) mapStoreErrorToGrpcStatus(err error, resourceName string, resourceID string) error {
	if err == nil {
		return nil
	}

	var validationErr *domain.ValidationError
	switch {
	case store.IsNotFound(err):
		return status.Errorf(codes.NotFound, "%s with ID %s not found", resourceName, resourceID)
	case errors.Is(err, store.ErrCategoryNameExists):
		return status.Errorf(codes.AlreadyExists, "A %s with the given name already exists", resourceName)
	case errors.Is(err, store.ErrInvalidCategory):
		return status.Error(codes.InvalidArgument, store.ErrInvalidCategory.Error())
	case errors.Is(err, store.ErrCategoryInUse):
		return status.Error(codes.FailedPrecondition, store.ErrCategoryInUse.Error())
	case errors.As(err, &validationErr):
		return status.Error(codes.InvalidArgument, validationErr.Error())
	default:
		h.log.Errorf("Store operation for %s ID %s failed: %v", resourceName, resourceID, err)
		return status.Errorf(codes.Internal, "Internal error processing %s", resourceName)
	}
}

// toStruct converts any JSON-encodable value into a protobuf Struct.
func toStruct(v interface{}) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return structpb.NewStruct(fields)
}

func toList(v interface{}) (*structpb.ListValue, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return structpb.NewList(items)
}

func (h *GRPCHandler) encodeFailure(what string, err error) error {
	h.log.Errorf("Encoding %s failed: %v", what, err)
	return status.Errorf(codes.Internal, "Failed to encode %s", what)
}

// filterFromStruct reads search, category, expired, skip and limit fields.
// Absent fields impose no constraint; a wrongly typed field is rejected.
func (l Limits) filterFromStruct(in *structpb.Struct) (query.Filter, error) {
	f := query.Filter{Limit: l.DefaultLimit}
	fields := in.GetFields()

	if v, ok := fields["search"]; ok {
		s, isString := v.GetKind().(*structpb.Value_StringValue)
		if !isString {
			return query.Filter{}, status.Error(codes.InvalidArgument, "search must be a string")
		}
		if trimmed := strings.TrimSpace(s.StringValue); trimmed != "" {
			f.Search = &trimmed
		}
	}
	if v, ok := fields["category"]; ok {
		s, isString := v.GetKind().(*structpb.Value_StringValue)
		if !isString {
			return query.Filter{}, status.Error(codes.InvalidArgument, "category must be a string")
		}
		if c := normalizeCategoryName(s.StringValue); c != "" {
			f.Category = &c
		}
	}
	if v, ok := fields["expired"]; ok {
		b, isBool := v.GetKind().(*structpb.Value_BoolValue)
		if !isBool {
			return query.Filter{}, status.Error(codes.InvalidArgument, "expired must be a boolean")
		}
		expired := b.BoolValue
		f.Expired = &expired
	}
	if v, ok := fields["skip"]; ok {
		skip, err := nonNegativeInt(v, "skip")
		if err != nil {
			return query.Filter{}, err
		}
		f.Skip = skip
	}
	if v, ok := fields["limit"]; ok {
		limit, err := nonNegativeInt(v, "limit")
		if err != nil {
			return query.Filter{}, err
		}
		f.Limit = limit
	}
	f.Limit = l.clamp(f.Limit)
	return f, nil
}

func nonNegativeInt(v *structpb.Value, name string) (int, error) {
	n, isNumber := v.GetKind().(*structpb.Value_NumberValue)
	if !isNumber || n.NumberValue < 0 || n.NumberValue != math.Trunc(n.NumberValue) || n.NumberValue > math.MaxInt32 {
		return 0, status.Errorf(codes.InvalidArgument, "%s must be a non-negative integer", name)
	}
	return int(n.NumberValue), nil
}

// --- Medicine RPCs ---

func (h *GRPCHandler) GetMedicine(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id := strings.TrimSpace(req.GetValue())
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "medicine ID is required")
	}

	medicine, err := h.medicineStore.GetMedicineByID(ctx, id)
	if err != nil {
		return nil, h.mapStoreErrorToGrpcStatus(err, "medicine", id)
	}

	out, err := toStruct(newMedicineResponse(*medicine, domain.DateOf(h.now())))
	if err != nil {
		return nil, h.encodeFailure("medicine", err)
	}
	return out, nil
}

func (h *GRPCHandler) ListMedicines(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filter, err := h.limits.filterFromStruct(req)
	if err != nil {
		return nil, err
	}

	medicines, err := h.medicineStore.ListMedicines(ctx)
	if err != nil {
		return nil, h.mapStoreErrorToGrpcStatus(err, "medicine", "*")
	}

	today := domain.DateOf(h.now())
	page := query.Apply(medicines, filter, today)
	items, err := toList(newMedicineResponses(page.Items, today))
	if err != nil {
		return nil, h.encodeFailure("medicines", err)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"medicines": structpb.NewListValue(items),
		"total":     structpb.NewNumberValue(float64(page.Total)),
	}}, nil
}

func (h *GRPCHandler) GetInventoryStats(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filter, err := h.limits.filterFromStruct(req)
	if err != nil {
		return nil, err
	}

	medicines, err := h.medicineStore.ListMedicines(ctx)
	if err != nil {
		return nil, h.mapStoreErrorToGrpcStatus(err, "medicine", "*")
	}

	today := domain.DateOf(h.now())
	stats := query.Summarize(query.Select(medicines, filter, today), today)
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"total":     structpb.NewNumberValue(float64(stats.Total)),
		"expired":   structpb.NewNumberValue(float64(stats.Expired)),
		"low_stock": structpb.NewNumberValue(float64(stats.LowStock)),
	}}, nil
}

// --- Category RPCs ---

func (h *GRPCHandler) GetCategory(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	id := strings.TrimSpace(req.GetValue())
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "category ID is required")
	}

	category, err := h.categoryStore.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, h.mapStoreErrorToGrpcStatus(err, "category", id)
	}

	out, err := toStruct(category)
	if err != nil {
		return nil, h.encodeFailure("category", err)
	}
	return out, nil
}

func (h *GRPCHandler) ListCategories(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	categories, err := h.categoryStore.ListCategories(ctx)
	if err != nil {
		return nil, h.mapStoreErrorToGrpcStatus(err, "category", "*")
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	items, err := toList(categories)
	if err != nil {
		return nil, h.encodeFailure("categories", err)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"categories": structpb.NewListValue(items),
	}}, nil
}
