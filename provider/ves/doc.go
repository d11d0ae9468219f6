// Package ves provides exchange rate providers for the Venezuelan Bolivar (VES).
//
// # Providers
//
// ## DolarAPI
//
// Source: "DolarAPI"
// URL: https://ve.dolarapi.com/v1/dolares/oficial, /v1/dolares/paralelo
// TTL: 5 minutes
//
// Returns the USD/VES official or parallel quote. The value is taken from
// the first present of promedio, venta, compra or rate, either at the top
// level of the payload or nested under "data".
//
// ## BCV API
//
// Source: "BCV API"
// URL: https://bcv-api.rafnixg.dev/rates/
// TTL: 5 minutes
//
// A JSON mirror of the official BCV rates. The payload is an array of
// entries carrying a symbol and a value under rate, value or price.
// EUR/VES and USD/VES entries are returned.
//
// ## BCV (Official Central Bank)
//
// Source: "BCV"
// URL: https://www.bcv.org.ve/
// TTL: 1 hour
//
// Scrapes the official USD/VES and EUR/VES rates from the
// Banco Central de Venezuela website.
package ves
