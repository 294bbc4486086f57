// Package invoicing implementa el alta de facturas del módulo contable.
// La certificación FEL es un paso posterior (ver application/fel).
package invoicing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tu-usuario/fel-gt/internal/application/dto"
	"github.com/tu-usuario/fel-gt/internal/domain"
	"github.com/tu-usuario/fel-gt/internal/domain/entity"
	"github.com/tu-usuario/fel-gt/internal/domain/repository"
)

// TxRunner ejecuta fn con un repositorio de facturas atado a una transacción;
// la cabecera y las líneas se persisten atómicamente.
type TxRunner interface {
	Run(ctx context.Context, fn func(invoiceRepo repository.InvoiceRepository) error) error
}

// UseCase caso de uso de alta y consulta de facturas.
type UseCase struct {
	txRunner    TxRunner
	invoiceRepo repository.InvoiceRepository
	partnerRepo repository.PartnerRepository
	dteTypeRepo repository.DTETypeRepository
}

// NewUseCase construye el caso de uso.
func NewUseCase(txRunner TxRunner, invoiceRepo repository.InvoiceRepository,
	partnerRepo repository.PartnerRepository, dteTypeRepo repository.DTETypeRepository) *UseCase {
	return &UseCase{
		txRunner:    txRunner,
		invoiceRepo: invoiceRepo,
		partnerRepo: partnerRepo,
		dteTypeRepo: dteTypeRepo,
	}
}

// GetInvoice obtiene una factura con sus líneas, verificando que pertenezca
// a la empresa del solicitante.
func (uc *UseCase) GetInvoice(_ context.Context, companyID, invoiceID string) (*entity.Invoice, []*entity.InvoiceLine, error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, nil, err
	}
	if inv == nil || inv.CompanyID != companyID {
		return nil, nil, domain.ErrNotFound
	}
	lines, err := uc.invoiceRepo.GetLinesByInvoiceID(invoiceID)
	if err != nil {
		return nil, nil, err
	}
	return inv, lines, nil
}

// CreateInvoice valida la petición y persiste cabecera y líneas en una sola
// transacción. La factura nace en estado not_sent.
func (uc *UseCase) CreateInvoice(ctx context.Context, companyID string, req dto.CreateInvoiceRequest) (*entity.Invoice, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: el nombre del documento es obligatorio", domain.ErrValidation)
	}
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: la factura debe tener al menos una línea", domain.ErrValidation)
	}

	partner, err := uc.partnerRepo.GetByID(req.PartnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil || partner.CompanyID != companyID {
		return nil, fmt.Errorf("%w: receptor %s", domain.ErrNotFound, req.PartnerID)
	}
	dteType, err := uc.dteTypeRepo.GetByID(req.DTETypeID)
	if err != nil {
		return nil, err
	}
	if dteType == nil {
		return nil, fmt.Errorf("%w: tipo de DTE %s", domain.ErrNotFound, req.DTETypeID)
	}

	inv := &entity.Invoice{
		CompanyID:  companyID,
		PartnerID:  req.PartnerID,
		JournalID:  req.JournalID,
		Name:       strings.TrimSpace(req.Name),
		MoveType:   req.MoveType,
		Currency:   req.Currency,
		DTETypeID:  req.DTETypeID,
		Regime:     req.Regime,
		OriginUUID: req.OriginUUID,
		Ref:        req.Ref,
		FELStatus:  entity.FELStatusNotSent,
	}
	if req.OriginDate != "" {
		d, err := time.Parse("2006-01-02", req.OriginDate)
		if err != nil {
			return nil, fmt.Errorf("%w: fecha de origen inválida %q (formato AAAA-MM-DD)",
				domain.ErrValidation, req.OriginDate)
		}
		inv.OriginDate = &d
	}

	lines := make([]*entity.InvoiceLine, 0, len(req.Lines))
	for i, l := range req.Lines {
		if !l.Quantity.IsPositive() {
			return nil, fmt.Errorf("%w: la cantidad debe ser mayor que cero (línea %d)",
				domain.ErrValidation, i+1)
		}
		if l.PriceUnit.IsNegative() {
			return nil, fmt.Errorf("%w: el precio unitario no puede ser negativo (línea %d)",
				domain.ErrValidation, i+1)
		}
		if l.Discount.IsNegative() || l.Discount.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("%w: el descuento debe estar entre 0 y 100 (línea %d)",
				domain.ErrValidation, i+1)
		}
		productType := l.ProductType
		if productType == "" {
			productType = "service"
		}
		taxes := make([]entity.LineTax, 0, len(l.Taxes))
		for _, t := range l.Taxes {
			taxes = append(taxes, entity.LineTax{
				CodeName:             t.CodeName,
				CodigoUnidadGravable: t.CodigoUnidadGravable,
			})
		}
		lines = append(lines, &entity.InvoiceLine{
			ProductType: productType,
			Quantity:    l.Quantity,
			UOMName:     l.UOMName,
			Description: l.Description,
			PriceUnit:   l.PriceUnit,
			Discount:    l.Discount,
			Taxes:       taxes,
			Sequence:    (i + 1) * 10,
		})
	}

	err = uc.txRunner.Run(ctx, func(invoiceRepo repository.InvoiceRepository) error {
		if err := invoiceRepo.Create(inv); err != nil {
			return err
		}
		for _, line := range lines {
			line.InvoiceID = inv.ID
			if err := invoiceRepo.CreateLine(line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}
