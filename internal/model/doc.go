// Package model содержит нормализованную запись кампании, общую для всех источников.
package model
