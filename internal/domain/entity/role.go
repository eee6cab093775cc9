package entity

// Roles de negocio. Viajan en app_metadata.role del token de Supabase.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero" // opera bodegas: traslados, salidas, recepciones
	RoleCompras   = "compras"   // registra órdenes de compra
)
