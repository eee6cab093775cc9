package repository

// Tx agrupa los repositorios atados a una misma transacción de BD.
type Tx struct {
	Locker     Locker
	Stock      StockRecordRepository
	Transfers  TransferRepository
	Ledger     LedgerRepository
	Orders     PurchaseOrderRepository
	Shipments  ShipmentRepository
	Items      ItemRepository
	Warehouses WarehouseRepository
}
