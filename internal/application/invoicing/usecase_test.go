package invoicing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/fel-gt/internal/application/dto"
	"github.com/tu-usuario/fel-gt/internal/domain"
	"github.com/tu-usuario/fel-gt/internal/domain/entity"
	"github.com/tu-usuario/fel-gt/internal/domain/repository"
)

// ── Fakes ─────────────────────────────────────────────────────────────────

type fakeInvoiceRepo struct {
	invoices  []*entity.Invoice
	lines     []*entity.InvoiceLine
	getInv    *entity.Invoice
	getLines  []*entity.InvoiceLine
	createErr error
}

func (f *fakeInvoiceRepo) Create(inv *entity.Invoice) error {
	if f.createErr != nil {
		return f.createErr
	}
	if inv.ID == "" {
		inv.ID = "inv-1"
	}
	f.invoices = append(f.invoices, inv)
	return nil
}

func (f *fakeInvoiceRepo) CreateLine(line *entity.InvoiceLine) error {
	f.lines = append(f.lines, line)
	return nil
}

func (f *fakeInvoiceRepo) GetByID(string) (*entity.Invoice, error) { return f.getInv, nil }
func (f *fakeInvoiceRepo) GetLinesByInvoiceID(string) ([]*entity.InvoiceLine, error) {
	return f.getLines, nil
}
func (f *fakeInvoiceRepo) GetJournalByInvoiceID(string) (*entity.InvoiceJournal, error) {
	return nil, nil
}
func (f *fakeInvoiceRepo) UpdateFEL(*entity.Invoice) error              { return nil }
func (f *fakeInvoiceRepo) GetFELStatus(string) (*entity.Invoice, error) { return nil, nil }

type fakeTxRunner struct {
	repo     *fakeInvoiceRepo
	rolledUp bool // fn devolvió error (la tx se habría revertido)
}

func (f *fakeTxRunner) Run(_ context.Context, fn func(repository.InvoiceRepository) error) error {
	if err := fn(f.repo); err != nil {
		f.rolledUp = true
		return err
	}
	return nil
}

type fakePartnerRepo struct{ partner *entity.Partner }

func (f *fakePartnerRepo) Create(*entity.Partner) error            { return nil }
func (f *fakePartnerRepo) GetByID(string) (*entity.Partner, error) { return f.partner, nil }
func (f *fakePartnerRepo) List(string, int, int) ([]*entity.Partner, error) {
	return nil, nil
}
func (f *fakePartnerRepo) Update(*entity.Partner) error { return nil }

type fakeDTETypeRepo struct{ dteType *entity.DTEType }

func (f *fakeDTETypeRepo) GetByID(string) (*entity.DTEType, error)   { return f.dteType, nil }
func (f *fakeDTETypeRepo) GetByCode(string) (*entity.DTEType, error) { return f.dteType, nil }
func (f *fakeDTETypeRepo) ListByGeneralMoveType(string) ([]*entity.DTEType, error) {
	return nil, nil
}

// ── Fixtures ──────────────────────────────────────────────────────────────

func validRequest() dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		PartnerID: "partner-1",
		Name:      "FACT/2024/0001",
		MoveType:  "out_invoice",
		Currency:  "GTQ",
		DTETypeID: "dte-fact",
		Lines: []dto.CreateInvoiceLineRequest{
			{
				ProductType: "consu",
				Quantity:    decimal.NewFromInt(1),
				UOMName:     "Unidades",
				Description: "Servicio de consultoría",
				PriceUnit:   decimal.RequireFromString("147.00"),
				Taxes:       []dto.LineTaxDTO{{CodeName: "IVA", CodigoUnidadGravable: 1}},
			},
			{
				Quantity:    decimal.NewFromInt(2),
				UOMName:     "Unidades",
				Description: "Soporte mensual",
				PriceUnit:   decimal.RequireFromString("50.00"),
			},
		},
	}
}

func newUseCase(repo *fakeInvoiceRepo) (*UseCase, *fakeTxRunner) {
	tx := &fakeTxRunner{repo: repo}
	uc := NewUseCase(tx, repo,
		&fakePartnerRepo{partner: &entity.Partner{ID: "partner-1", CompanyID: "company-1", NIT: "CF"}},
		&fakeDTETypeRepo{dteType: &entity.DTEType{ID: "dte-fact", Code: "FACT"}},
	)
	return uc, tx
}

// ── CreateInvoice ─────────────────────────────────────────────────────────

func TestCreateInvoice_Exitoso(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	uc, _ := newUseCase(repo)

	inv, err := uc.CreateInvoice(context.Background(), "company-1", validRequest())
	require.NoError(t, err)

	assert.Equal(t, entity.FELStatusNotSent, inv.FELStatus)
	assert.Equal(t, "company-1", inv.CompanyID)
	require.Len(t, repo.invoices, 1)
	require.Len(t, repo.lines, 2)

	// Líneas atadas a la factura, con secuencia espaciada y tipo por defecto.
	assert.Equal(t, inv.ID, repo.lines[0].InvoiceID)
	assert.Equal(t, 10, repo.lines[0].Sequence)
	assert.Equal(t, 20, repo.lines[1].Sequence)
	assert.Equal(t, "consu", repo.lines[0].ProductType)
	assert.Equal(t, "service", repo.lines[1].ProductType)
	require.Len(t, repo.lines[0].Taxes, 1)
	assert.Equal(t, "IVA", repo.lines[0].Taxes[0].CodeName)
}

func TestCreateInvoice_FechaOrigen(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	uc, _ := newUseCase(repo)

	req := validRequest()
	req.OriginUUID = "UUID-ORIGEN"
	req.OriginDate = "2024-04-01"

	inv, err := uc.CreateInvoice(context.Background(), "company-1", req)
	require.NoError(t, err)
	require.NotNil(t, inv.OriginDate)
	assert.Equal(t, "2024-04-01", inv.OriginDate.Format("2006-01-02"))

	req.OriginDate = "01/04/2024"
	_, err = uc.CreateInvoice(context.Background(), "company-1", req)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateInvoice_Validaciones(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*dto.CreateInvoiceRequest)
	}{
		{"sin nombre", func(r *dto.CreateInvoiceRequest) { r.Name = "  " }},
		{"sin líneas", func(r *dto.CreateInvoiceRequest) { r.Lines = nil }},
		{"cantidad cero", func(r *dto.CreateInvoiceRequest) { r.Lines[0].Quantity = decimal.Zero }},
		{"precio negativo", func(r *dto.CreateInvoiceRequest) {
			r.Lines[0].PriceUnit = decimal.NewFromInt(-1)
		}},
		{"descuento fuera de rango", func(r *dto.CreateInvoiceRequest) {
			r.Lines[0].Discount = decimal.NewFromInt(120)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeInvoiceRepo{}
			uc, _ := newUseCase(repo)
			req := validRequest()
			tc.mutate(&req)

			_, err := uc.CreateInvoice(context.Background(), "company-1", req)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, repo.invoices, "no debe persistir nada")
		})
	}
}

func TestCreateInvoice_ReceptorDeOtraEmpresa(t *testing.T) {
	repo := &fakeInvoiceRepo{}
	uc, _ := newUseCase(repo)

	_, err := uc.CreateInvoice(context.Background(), "company-2", validRequest())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ── GetInvoice ────────────────────────────────────────────────────────────

func TestGetInvoice_VerificaEmpresa(t *testing.T) {
	repo := &fakeInvoiceRepo{
		getInv:   &entity.Invoice{ID: "inv-1", CompanyID: "company-1", Name: "FACT/2024/0001"},
		getLines: []*entity.InvoiceLine{{ID: "line-1", InvoiceID: "inv-1"}},
	}
	uc, _ := newUseCase(repo)

	inv, lines, err := uc.GetInvoice(context.Background(), "company-1", "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "FACT/2024/0001", inv.Name)
	assert.Len(t, lines, 1)

	// Otra empresa no puede verla.
	_, _, err = uc.GetInvoice(context.Background(), "company-2", "inv-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateInvoice_FalloEnTxPropaga(t *testing.T) {
	boom := errors.New("insert invoice: conexión perdida")
	repo := &fakeInvoiceRepo{createErr: boom}
	uc, tx := newUseCase(repo)

	_, err := uc.CreateInvoice(context.Background(), "company-1", validRequest())
	assert.ErrorIs(t, err, boom)
	assert.True(t, tx.rolledUp)
}
